// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParagraphs_Push(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      []string
		pending   string
	}{
		{"no break", []string{"Hello ", "world"}, nil, "Hello world"},
		{"one break", []string{"Hello ", "world\n\n", "Goodbye"}, []string{"Hello world"}, "Goodbye"},
		{"split delimiter", []string{"a\n", "\nb"}, []string{"a"}, "b"},
		{"several at once", []string{"a\n\nb\n\nc"}, []string{"a", "b"}, "c"},
		{"trailing break", []string{"a\n\n"}, []string{"a"}, ""},
		{"single newline kept", []string{"line one\nline two"}, nil, "line one\nline two"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var p Paragraphs
			var got []string
			for _, f := range tc.fragments {
				got = append(got, p.Push(f)...)
			}
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.pending, p.Pending())
		})
	}
}

func TestParagraphs_FlushEmpties(t *testing.T) {
	var p Paragraphs
	p.Push("tail")

	require.Equal(t, "tail", p.Flush())
	require.Equal(t, "", p.Flush())
}
