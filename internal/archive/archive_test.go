// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchive_RecordAndRecent(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, prompt := range []string{"first", "second", "third"} {
		require.NoError(t, a.Record(ctx, Turn{
			SessionID: "s1",
			Model:     "gemma3:latest",
			ImagePath: "/tmp/cat.png",
			Prompt:    prompt,
			Response:  "answer " + prompt,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	turns, err := a.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, "third", turns[0].Prompt)
	require.Equal(t, "second", turns[1].Prompt)
	require.NotEmpty(t, turns[0].ID)
	require.Equal(t, "/tmp/cat.png", turns[0].ImagePath)
	require.True(t, turns[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	n, err := a.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestArchive_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	a, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Record(context.Background(), Turn{SessionID: "s", Model: "m", Prompt: "p", Response: "r"}))
	require.NoError(t, a.Close())

	a, err = Open(path)
	require.NoError(t, err)
	defer a.Close()

	turns, err := a.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Empty(t, turns[0].ImagePath)
}

func TestArchive_Closed(t *testing.T) {
	a := openTemp(t)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	require.ErrorIs(t, a.Record(context.Background(), Turn{}), ErrClosed)
	_, err := a.Recent(context.Background(), 1)
	require.ErrorIs(t, err, ErrClosed)
}
