// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgParserFlags(t *testing.T) {
	args := NewArgParser([]string{"show", "--limit", "20", "--since=2025-01-01", "--json"})

	assert.Equal(t, "show", args.Subcommand())
	assert.Equal(t, "20", args.Flag("limit"))
	assert.Equal(t, "2025-01-01", args.Flag("since"))
	assert.True(t, args.BoolFlag("json"))
	assert.False(t, args.BoolFlag("web"))
}

func TestArgParserExplicitBool(t *testing.T) {
	args := NewArgParser([]string{"--json=false", "--web=true"})
	assert.False(t, args.BoolFlag("json"))
	assert.True(t, args.BoolFlag("web"))
}

func TestArgParserIntDefaults(t *testing.T) {
	args := NewArgParser([]string{"list", "--limit", "abc"})
	assert.Equal(t, 20, args.FlagIntOrDefault("limit", 20))
	assert.Equal(t, 5, args.FlagIntOrDefault("missing", 5))

	args = NewArgParser([]string{"list", "--limit", "50"})
	assert.Equal(t, 50, args.FlagIntOrDefault("limit", 20))
}

func TestArgParserPositionals(t *testing.T) {
	args := NewArgParser([]string{"search", "box", "3", "--limit", "10"})

	assert.Equal(t, "search", args.Positional(0))
	assert.Equal(t, "box 3", JoinPositionalArgs(args, 1))
	assert.Equal(t, 3, args.PositionalCount())
	assert.Empty(t, args.Positional(9))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"true", "JA", "yes", "1", "on"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "nee", "no", "0", "off"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("misschien")
	assert.Error(t, err)
}

func TestHasFlag(t *testing.T) {
	args := NewArgParser([]string{"--out", "bestand.md", "--confirm"})
	assert.True(t, args.HasFlag("out"))
	assert.True(t, args.HasFlag("confirm"))
	assert.False(t, args.HasFlag("limit"))
}
