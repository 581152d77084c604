// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ParseLevel(tc.in), tc.in)
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("quiet")
	logger.Warn("loud", "k", "v")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
	require.Contains(t, buf.String(), "k=v")
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vizchat.log")

	logger, closer, err := Open(path, "debug")
	require.NoError(t, err)
	logger.Debug("first")
	require.NoError(t, closer.Close())

	logger, closer, err = Open(path, "debug")
	require.NoError(t, err)
	logger.Debug("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "first")
	require.Contains(t, string(data), "second")
}

func TestFromContext_AddsTurnID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info")

	FromContext(context.Background(), base).Info("plain")
	FromContext(WithTurnID(context.Background(), "t-1"), base).Info("tagged")

	require.Contains(t, buf.String(), "turn_id=t-1")
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("turn_id")))
}
