// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/fiscus-tui/internal/stage"
)

func TestStageSpinnerLifecycle(t *testing.T) {
	sp := NewStageSpinner()
	assert.False(t, sp.Active())
	assert.Empty(t, sp.View())

	cmd := sp.Start(stage.Analyzing)
	require.NotNil(t, cmd)
	assert.True(t, sp.Active())
	assert.Contains(t, sp.View(), stage.Analyzing.Label())

	sp.SetStage(stage.Reasoning)
	assert.Contains(t, sp.View(), stage.Reasoning.Label())

	sp.Stop()
	assert.False(t, sp.Active())
	assert.Empty(t, sp.View())
}

func TestStageSpinnerElapsed(t *testing.T) {
	sp := NewStageSpinner()
	assert.Zero(t, sp.Elapsed())

	sp.Start(stage.Retrieving)
	assert.GreaterOrEqual(t, sp.Elapsed(), time.Duration(0))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0s", formatElapsed(0))
	assert.Equal(t, "45s", formatElapsed(45*time.Second))
	assert.Equal(t, "1m 5s", formatElapsed(65*time.Second))
	assert.Equal(t, "2m 0s", formatElapsed(2*time.Minute))
}
