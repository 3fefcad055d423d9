// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"no truncation", "kort", 10, "kort"},
		{"exact length", "precies", 7, "precies"},
		{"truncated with ellipsis", "een lange zin over belasting", 10, "een la..."},
		{"multibyte preserved", "€€€€€€", 5, "€€..."},
		{"tiny max", "abcdef", 2, "ab"},
		{"zero max", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max))
		})
	}
}

func TestTruncateRunesNoEllipsis(t *testing.T) {
	assert.Equal(t, "€€", TruncateRunesNoEllipsis("€€€€", 2))
	assert.Equal(t, "abc", TruncateRunesNoEllipsis("abc", 5))
	assert.Equal(t, "", TruncateRunesNoEllipsis("abc", 0))
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.json")

	require.NoError(t, AtomicWriteFile(path, []byte(`{"a":1}`), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Overwrite must replace contents, not append.
	require.NoError(t, AtomicWriteFile(path, []byte(`{"b":2}`), 0600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
