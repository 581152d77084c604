// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/vizchat/internal/archive"
	"github.com/jeranaias/vizchat/internal/model"
	"github.com/jeranaias/vizchat/internal/worker"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

type entry struct {
	role    string
	text    string
	labeled bool
}

type fakeTranscript struct {
	entries []entry
	clears  int
}

func (f *fakeTranscript) AppendUser(text string) {
	f.entries = append(f.entries, entry{role: "user", text: text})
}

func (f *fakeTranscript) AppendAssistant(p string, labeled bool) {
	f.entries = append(f.entries, entry{role: "assistant", text: p, labeled: labeled})
}

func (f *fakeTranscript) Clear() {
	f.entries = nil
	f.clears++
}

type fakeImages struct{ path string }

func (f *fakeImages) ImagePath() string { return f.path }

type launch struct {
	ctx context.Context
	req worker.Request
}

type fakeLauncher struct{ launches []launch }

func (f *fakeLauncher) Start(ctx context.Context, req worker.Request, _ worker.Sink) <-chan struct{} {
	f.launches = append(f.launches, launch{ctx: ctx, req: req})
	done := make(chan struct{})
	close(done)
	return done
}

func (f *fakeLauncher) last() launch { return f.launches[len(f.launches)-1] }

type fakeStore struct {
	saved []string
	err   error
	value string
}

func (f *fakeStore) Remember(m string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if m == f.value {
		return false, nil
	}
	f.value = m
	f.saved = append(f.saved, m)
	return true, nil
}

type fakeRecorder struct{ turns []archive.Turn }

func (f *fakeRecorder) Record(_ context.Context, t archive.Turn) error {
	f.turns = append(f.turns, t)
	return nil
}

type harness struct {
	ctrl       *Controller
	transcript *fakeTranscript
	images     *fakeImages
	launcher   *fakeLauncher
	store      *fakeStore
	recorder   *fakeRecorder
}

func newHarness(imagePath string) *harness {
	h := &harness{
		transcript: &fakeTranscript{},
		images:     &fakeImages{path: imagePath},
		launcher:   &fakeLauncher{},
		store:      &fakeStore{},
		recorder:   &fakeRecorder{},
	}
	n := 0
	h.ctrl = New(Options{
		SystemPrompt: "PROMPT",
		Model:        "gemma3:latest",
		Store:        h.store,
		Transcript:   h.transcript,
		Images:       h.images,
		Launcher:     h.launcher,
		Recorder:     h.recorder,
		NewID: func() string {
			n++
			return "id" + strconv.Itoa(n)
		},
	})
	return h
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestSubmit_BlankInputIsNoOp(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		h := newHarness("cat.png")

		err := h.ctrl.Submit(in)

		require.ErrorIs(t, err, ErrEmptyInput)
		require.Empty(t, h.ctrl.History())
		require.Empty(t, h.transcript.entries)
		require.Empty(t, h.launcher.launches)
		require.Equal(t, Idle, h.ctrl.State())
	}
}

func TestSubmit_FirstTurnWithoutImage(t *testing.T) {
	h := newHarness("")

	err := h.ctrl.Submit("what is this?")

	require.ErrorIs(t, err, ErrNoImage)
	require.Empty(t, h.ctrl.History())
	require.Empty(t, h.transcript.entries)
	require.Empty(t, h.launcher.launches, "no network call")
	require.Empty(t, h.store.saved)
	require.Equal(t, Idle, h.ctrl.State())
}

func TestSubmit_FirstTurnHistoryShape(t *testing.T) {
	h := newHarness("/tmp/cat.png")

	require.NoError(t, h.ctrl.Submit("  what is this?  "))

	hist := h.ctrl.History()
	require.Len(t, hist, 2)
	require.Equal(t, model.RoleSystem, hist[0].Role)
	require.Equal(t, "PROMPT", hist[0].Content)
	require.Equal(t, model.RoleUser, hist[1].Role)
	require.Equal(t, "what is this?", hist[1].Content)
	require.Equal(t, "/tmp/cat.png", hist[1].ImagePath)

	require.Equal(t, AwaitingResponse, h.ctrl.State())
	require.Len(t, h.launcher.launches, 1)
	req := h.launcher.last().req
	require.Equal(t, "gemma3:latest", req.Model)
	require.Len(t, req.Messages, 2)
	require.Equal(t, []entry{{role: "user", text: "what is this?"}}, h.transcript.entries)
}

func TestSubmit_LaterTurnsCarryNoImage(t *testing.T) {
	h := newHarness("/tmp/cat.png")
	require.NoError(t, h.ctrl.Submit("first"))
	h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "a cat")

	h.images.path = "/tmp/dog.png"
	require.NoError(t, h.ctrl.Submit("second"))

	hist := h.ctrl.History()
	require.Len(t, hist, 4)
	require.Equal(t, model.RoleAssistant, hist[2].Role)
	require.Equal(t, model.RoleUser, hist[3].Role)
	require.Equal(t, "second", hist[3].Content)
	require.False(t, hist[3].HasImage())
}

func TestSubmit_RejectsWhileAwaiting(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("one"))

	err := h.ctrl.Submit("two")

	require.ErrorIs(t, err, ErrBusy)
	require.Len(t, h.ctrl.History(), 2)
	require.Len(t, h.launcher.launches, 1)
}

func TestSubmit_PersistsChangedModel(t *testing.T) {
	h := newHarness("cat.png")
	h.store.value = "gemma3:latest"

	require.NoError(t, h.ctrl.Submit("one"))
	require.Empty(t, h.store.saved, "unchanged selection is not rewritten")
	h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "ok")

	h.ctrl.SetModel("llava:7b")
	require.NoError(t, h.ctrl.Submit("two"))
	require.Equal(t, []string{"llava:7b"}, h.store.saved)
	require.Equal(t, "llava:7b", h.launcher.last().req.Model)
}

func TestSubmit_StoreFailureDoesNotBlockTurn(t *testing.T) {
	h := newHarness("cat.png")
	h.store.err = errors.New("disk full")

	require.NoError(t, h.ctrl.Submit("one"))
	require.Equal(t, AwaitingResponse, h.ctrl.State())
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestStreaming_ParagraphsAndCompletion(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("hi"))
	id := h.ctrl.CurrentTurn()

	for _, frag := range []string{"Hello ", "world\n\n", "Goodbye"} {
		require.True(t, h.ctrl.HandleFragment(id, frag))
	}

	require.Equal(t, []entry{
		{role: "user", text: "hi"},
		{role: "assistant", text: "Hello world", labeled: true},
	}, h.transcript.entries, "exactly one labeled paragraph before completion")

	require.True(t, h.ctrl.HandleFinished(id, "Hello world\n\nGoodbye"))

	last := h.ctrl.History()[len(h.ctrl.History())-1]
	require.Equal(t, model.RoleAssistant, last.Role)
	require.Equal(t, "Hello world\n\nGoodbye", last.Content)

	require.Equal(t, entry{role: "assistant", text: "Goodbye", labeled: false},
		h.transcript.entries[len(h.transcript.entries)-1], "trailing paragraph is flushed unlabeled")
	require.Equal(t, Idle, h.ctrl.State())
	require.Error(t, h.launcher.last().ctx.Err(), "turn context released")
}

func TestStreaming_LabelOnlyOncePerTurn(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("hi"))
	id := h.ctrl.CurrentTurn()

	h.ctrl.HandleFragment(id, "a\n\nb\n\nc\n")
	h.ctrl.HandleFragment(id, "\nd")
	h.ctrl.HandleFinished(id, "a\n\nb\n\nc\n\nd")

	var labels []bool
	var texts []string
	for _, e := range h.transcript.entries[1:] {
		labels = append(labels, e.labeled)
		texts = append(texts, e.text)
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, texts)
	require.Equal(t, []bool{true, false, false, false}, labels)

	require.NoError(t, h.ctrl.Submit("again"))
	id2 := h.ctrl.CurrentTurn()
	h.ctrl.HandleFragment(id2, "x")
	require.True(t, h.ctrl.HandleFinished(id2, "x"))

	last := h.transcript.entries[len(h.transcript.entries)-1]
	require.Equal(t, "assistant", last.role)
	require.Equal(t, "x", last.text)
	require.True(t, last.labeled, "new turn is labeled again")
}

func TestStreaming_FailureLeavesNoAssistantEntry(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("hi"))
	id := h.ctrl.CurrentTurn()

	require.True(t, h.ctrl.HandleFailed(id, errors.New("connection refused")))

	hist := h.ctrl.History()
	require.Len(t, hist, 2)
	require.Equal(t, model.RoleUser, hist[1].Role)
	require.Equal(t, Idle, h.ctrl.State())
	require.Empty(t, h.recorder.turns)
}

func TestStreaming_StaleSignalsIgnored(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("hi"))
	old := h.ctrl.CurrentTurn()
	h.ctrl.Reset()

	require.False(t, h.ctrl.HandleFragment(old, "late\n\n"))
	require.False(t, h.ctrl.HandleFinished(old, "late"))
	require.False(t, h.ctrl.HandleFailed(old, errors.New("late")))

	require.Empty(t, h.ctrl.History())
	require.Empty(t, h.transcript.entries)
}

func TestStreaming_RecordsCompletedTurn(t *testing.T) {
	h := newHarness("/tmp/cat.png")
	require.NoError(t, h.ctrl.Submit("describe"))
	id := h.ctrl.CurrentTurn()
	h.ctrl.HandleFinished(id, "a cat")

	require.Len(t, h.recorder.turns, 1)
	got := h.recorder.turns[0]
	require.Equal(t, id, got.ID)
	require.Equal(t, "describe", got.Prompt)
	require.Equal(t, "a cat", got.Response)
	require.Equal(t, "/tmp/cat.png", got.ImagePath)
	require.Equal(t, h.ctrl.Status().SessionID, got.SessionID)
	require.Equal(t, 1, h.ctrl.Status().Turns)
}

func TestStreaming_LaterTurnsArchiveSessionImage(t *testing.T) {
	h := newHarness("/tmp/cat.png")
	require.NoError(t, h.ctrl.Submit("describe"))
	h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "a cat")

	// A new image loaded mid-session does not change what the session is about.
	h.images.path = "/tmp/dog.png"
	require.NoError(t, h.ctrl.Submit("what colour?"))
	h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "grey")

	require.Len(t, h.recorder.turns, 2)
	require.Equal(t, "/tmp/cat.png", h.recorder.turns[0].ImagePath)
	require.Equal(t, "/tmp/cat.png", h.recorder.turns[1].ImagePath)
	require.Equal(t, h.recorder.turns[0].SessionID, h.recorder.turns[1].SessionID)

	h.ctrl.Reset()
	require.NoError(t, h.ctrl.Submit("and this?"))
	h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "a dog")

	require.Len(t, h.recorder.turns, 3)
	require.Equal(t, "/tmp/dog.png", h.recorder.turns[2].ImagePath)
	require.NotEqual(t, h.recorder.turns[0].SessionID, h.recorder.turns[2].SessionID)
}

// gatedLauncher hands out done channels the test closes itself.
type gatedLauncher struct{ dones []chan struct{} }

func (g *gatedLauncher) Start(context.Context, worker.Request, worker.Sink) <-chan struct{} {
	done := make(chan struct{})
	g.dones = append(g.dones, done)
	return done
}

func TestDone_TracksLatestWorker(t *testing.T) {
	launcher := &gatedLauncher{}
	ctrl := New(Options{
		Transcript: &fakeTranscript{},
		Images:     &fakeImages{path: "/tmp/cat.png"},
		Launcher:   launcher,
	})
	require.Nil(t, ctrl.Done(), "no worker yet")

	require.NoError(t, ctrl.Submit("one"))
	first := ctrl.Done()
	require.NotNil(t, first)
	ctrl.HandleFinished(ctrl.CurrentTurn(), "")

	require.NoError(t, ctrl.Submit("two"))
	second := ctrl.Done()
	require.NotEqual(t, first, second)

	close(launcher.dones[0])
	select {
	case <-second:
		t.Fatal("second worker reported done early")
	default:
	}

	close(launcher.dones[1])
	<-second
	require.NoError(t, ctrl.Wait(context.Background()))
}

// =============================================================================
// RESET AND CLOSE TESTS
// =============================================================================

func TestReset_ClearsEverything(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"idle empty", func(h *harness) {}},
		{"after a turn", func(h *harness) {
			h.ctrl.Submit("hi")
			h.ctrl.HandleFinished(h.ctrl.CurrentTurn(), "yo")
		}},
		{"mid stream", func(h *harness) {
			h.ctrl.Submit("hi")
			h.ctrl.HandleFragment(h.ctrl.CurrentTurn(), "partial")
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness("cat.png")
			tc.setup(h)
			before := h.ctrl.Status().SessionID

			h.ctrl.Reset()

			require.Empty(t, h.ctrl.History())
			require.Empty(t, h.transcript.entries)
			require.Equal(t, 1, h.transcript.clears)
			require.Equal(t, Idle, h.ctrl.State())
			require.Empty(t, h.ctrl.paragraphs.Pending())
			require.NotEqual(t, before, h.ctrl.Status().SessionID)
			for _, l := range h.launcher.launches {
				require.Error(t, l.ctx.Err(), "in-flight worker cancelled")
			}
		})
	}
}

func TestReset_NextTurnIsFirstTurnAgain(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("one"))
	h.ctrl.Reset()

	require.NoError(t, h.ctrl.Submit("two"))
	hist := h.ctrl.History()
	require.Len(t, hist, 2)
	require.Equal(t, model.RoleSystem, hist[0].Role)
	require.Equal(t, "cat.png", hist[1].ImagePath)
}

func TestClose_CancelsAndRefuses(t *testing.T) {
	h := newHarness("cat.png")
	require.NoError(t, h.ctrl.Submit("one"))

	h.ctrl.Close()

	require.Error(t, h.launcher.last().ctx.Err())
	require.Equal(t, Idle, h.ctrl.State())
	require.ErrorIs(t, h.ctrl.Submit("two"), ErrClosed)
	require.NoError(t, h.ctrl.Wait(context.Background()))
}

func TestState_String(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "awaiting response", AwaitingResponse.String())
}
