// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/ollama"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type fakeStreamer struct {
	chunks []ollama.StreamChunk
	err    error
	calls  int
	got    []ollama.Message
	// block, when set, keeps the stream open until ctx ends
	block bool
}

func (f *fakeStreamer) ChatStream(ctx context.Context, _ string, messages []ollama.Message, cb ollama.StreamCallback) error {
	f.calls++
	f.got = messages
	for _, c := range f.chunks {
		cb(c)
	}
	if f.block {
		<-ctx.Done()
		return context.Canceled
	}
	return f.err
}

type recordingSink struct {
	mu        sync.Mutex
	fragments []string
	finished  []string
	failed    []error
}

func (r *recordingSink) Partial(_, fragment string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fragments = append(r.fragments, fragment)
}

func (r *recordingSink) Finished(_, full string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, full)
}

func (r *recordingSink) Failed(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func chunks(parts ...string) []ollama.StreamChunk {
	out := make([]ollama.StreamChunk, 0, len(parts)+1)
	for _, p := range parts {
		out = append(out, ollama.StreamChunk{Content: p})
	}
	return append(out, ollama.StreamChunk{Done: true})
}

// =============================================================================
// RUN TESTS
// =============================================================================

func TestRun_FragmentsThenFinished(t *testing.T) {
	client := &fakeStreamer{chunks: chunks("Hello ", "", "world\n\n", "Goodbye")}
	sink := &recordingSink{}

	New(client, nil).Run(context.Background(), Request{TurnID: "t1", Model: "m"}, sink)

	require.Equal(t, []string{"Hello ", "world\n\n", "Goodbye"}, sink.fragments)
	require.Equal(t, []string{"Hello world\n\nGoodbye"}, sink.finished)
	require.Empty(t, sink.failed)
}

func TestRun_FailureIsExclusive(t *testing.T) {
	client := &fakeStreamer{
		chunks: []ollama.StreamChunk{{Content: "partial"}},
		err:    ollama.ErrNotRunning,
	}
	sink := &recordingSink{}

	New(client, nil).Run(context.Background(), Request{TurnID: "t1"}, sink)

	require.Empty(t, sink.finished)
	require.Len(t, sink.failed, 1)
	require.True(t, ollama.IsNotRunning(sink.failed[0]))
	require.Contains(t, sink.failed[0].Error(), "ollama serve")
}

func TestRun_ImageReadFailureUsesFailedPath(t *testing.T) {
	client := &fakeStreamer{chunks: chunks("never")}
	sink := &recordingSink{}
	req := Request{
		TurnID:   "t1",
		Messages: []model.Message{model.NewImageMessage("what", filepath.Join(t.TempDir(), "missing.png"))},
	}

	New(client, nil).Run(context.Background(), req, sink)

	require.Zero(t, client.calls, "no network call when the request cannot be built")
	require.Len(t, sink.failed, 1)
	require.Empty(t, sink.finished)
}

func TestRun_SendsEncodedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	client := &fakeStreamer{chunks: chunks("ok")}
	req := Request{
		TurnID: "t1",
		Messages: []model.Message{
			model.NewSystemMessage("sys"),
			model.NewImageMessage("what", path),
		},
	}

	New(client, nil).Run(context.Background(), req, &recordingSink{})

	require.Len(t, client.got, 2)
	require.Equal(t, []string{"AQID"}, client.got[1].Images)
}

func TestRun_CancelledStaysSilent(t *testing.T) {
	client := &fakeStreamer{chunks: []ollama.StreamChunk{{Content: "a"}}, block: true}
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := New(client, nil).Start(ctx, Request{TurnID: "t1"}, sink)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Empty(t, sink.finished)
	require.Empty(t, sink.failed)
}

func TestDescribe_KeepsCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not running", ollama.ErrNotRunning},
		{"model missing", ollama.ErrModelNotFound},
		{"timeout", ollama.ErrTimeout},
		{"other", errors.New("boom")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, Describe(tc.err), tc.err)
		})
	}
}

// =============================================================================
// SINK TESTS
// =============================================================================

type fakeSender struct{ msgs []tea.Msg }

func (f *fakeSender) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTeaSink_PostsMessages(t *testing.T) {
	sender := &fakeSender{}
	sink := NewTeaSink(sender)
	boom := errors.New("boom")

	sink.Partial("t", "x")
	sink.Finished("t", "x")
	sink.Failed("t", boom)

	require.Equal(t, []tea.Msg{
		FragmentMsg{TurnID: "t", Text: "x"},
		FinishedMsg{TurnID: "t", Full: "x"},
		FailedMsg{TurnID: "t", Err: boom},
	}, sender.msgs)
}

func TestChanSink_DeliversInOrder(t *testing.T) {
	events := make(ChanSink, 8)
	client := &fakeStreamer{chunks: chunks("a", "b")}

	<-New(client, nil).Start(context.Background(), Request{TurnID: "t"}, events)
	close(events)

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 3)
	require.Equal(t, "a", got[0].Fragment.Text)
	require.Equal(t, "b", got[1].Fragment.Text)
	require.Equal(t, "ab", got[2].Finished.Full)
}
