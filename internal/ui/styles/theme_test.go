// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	require.NotNil(t, theme)

	// Styles must render without panicking regardless of profile.
	assert.NotEmpty(t, theme.Header.Render("fiscus"))
	assert.NotEmpty(t, theme.UserBubble.Render("vraag"))
	assert.NotEmpty(t, theme.AssistantBubble.Render("antwoord"))
}

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	theme.SetSize(120, 40)
	assert.Equal(t, 120, theme.Width)
	assert.Equal(t, 40, theme.Height)

	// Narrow terminals keep a usable minimum bubble width.
	theme.SetSize(10, 5)
	out := theme.UserBubble.Render("korte vraag")
	assert.NotEmpty(t, out)
}

func TestRenderHelpers(t *testing.T) {
	assert.Contains(t, RenderSuccess("klaar"), "klaar")
	assert.Contains(t, RenderError("mislukt"), "mislukt")
	assert.Contains(t, RenderWarning("let op"), "let op")
	assert.Contains(t, RenderInfo("melding"), "melding")
	assert.Contains(t, RenderLink("https://wetten.overheid.nl"), "wetten.overheid.nl")
}

func TestIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{Indicators.Success, Indicators.Error, Indicators.Warning, Indicators.Info} {
		for _, r := range s {
			assert.Less(t, r, rune(128), "indicator %q must be ASCII", s)
		}
	}
}
