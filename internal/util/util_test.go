// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the vizchat packages.
package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_CreatesAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600, 0700))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600, 0700))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo", 3, "hél"},
		{"anything", 0, ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, TruncateRunes(tc.in, tc.max), tc.in)
	}
}

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"gemma3:latest", 8, "gemma..."},
		{"日本語テキスト", 7, "日本..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tc := range tests {
		got := TruncateWidth(tc.in, tc.max)
		require.Equal(t, tc.want, got, tc.in)
		require.LessOrEqual(t, StringWidth(got), tc.max)
	}
}

func TestShortenPath(t *testing.T) {
	require.Equal(t, "/tmp/a.png", ShortenPath("/tmp/a.png", 20))
	require.Equal(t, ".../shots/cat.png", ShortenPath("/home/user/shots/cat.png", 17))
	require.Equal(t, "/ho", ShortenPath("/home/user/cat.png", 3))
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestPercent(t *testing.T) {
	require.Equal(t, "100%", Percent(1))
	require.Equal(t, "10%", Percent(0.1))
	require.Equal(t, "121%", Percent(1.21))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, "42s", FormatDuration(42*time.Second))
	require.Equal(t, "3m", FormatDuration(3*time.Minute))
	require.Equal(t, "4m 12s", FormatDuration(4*time.Minute+12*time.Second))
}
