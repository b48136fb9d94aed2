package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/render"
	"github.com/elee1766/gemchat/src/session"
	"github.com/elee1766/gemchat/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedReply struct {
	fragments []string
	err       error
}

// scriptedModel answers every send with the next scripted reply, or "ok"
type scriptedModel struct {
	replies []scriptedReply
	starts  []aisdk.GenerationParams
}

func (m *scriptedModel) StartChat(history []aisdk.Message, params aisdk.GenerationParams) aisdk.ChatSession {
	m.starts = append(m.starts, params)
	return &scriptedSession{model: m, params: params}
}

func (m *scriptedModel) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{ID: "scripted"}
}

type scriptedSession struct {
	model  *scriptedModel
	params aisdk.GenerationParams
}

func (s *scriptedSession) SendStream(ctx context.Context, text string, params aisdk.GenerationParams) (aisdk.StreamInterface, error) {
	r := scriptedReply{fragments: []string{"ok"}}
	if len(s.model.replies) > 0 {
		r, s.model.replies = s.model.replies[0], s.model.replies[1:]
	}
	stream := aisdk.NewSliceStream(r.fragments...)
	stream.Err = r.err
	return stream, nil
}

func (s *scriptedSession) History() []aisdk.Message        { return nil }
func (s *scriptedSession) Params() aisdk.GenerationParams { return s.params }

type replHarness struct {
	model *scriptedModel
	store *storage.ThreadStore
	ctrl  *session.Controller
	out   *bytes.Buffer
}

func newHarness(t *testing.T, policy session.Policy) *replHarness {
	t.Helper()
	db, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &replHarness{
		model: &scriptedModel{},
		store: storage.NewThreadStore(db, nil),
		out:   &bytes.Buffer{},
	}
	var store session.Store
	if policy == session.Persisting {
		store = h.store
	}
	h.ctrl = session.New(h.model, store, policy, nil)
	return h
}

func (h *replHarness) run(t *testing.T, input string) string {
	t.Helper()
	h.out.Reset()
	r := render.New(h.out, render.Options{NoColor: true})
	repl := NewREPL(h.ctrl, r, strings.NewReader(input), h.out, aisdk.DefaultGenerationParams(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, repl.Run(context.Background()))
	return h.out.String()
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line      string
		name, arg string
		ok        bool
	}{
		{line: "hello", ok: false},
		{line: "  /temp 0.4\n", name: "temp", arg: "0.4", ok: true},
		{line: "/NAME  Trip to Rome ", name: "name", arg: "Trip to Rome", ok: true},
		{line: "/quit", name: "quit", ok: true},
		{line: "what is 1/2?", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, arg, ok := parseCommand(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestREPLNamedChatAutosaves(t *testing.T) {
	h := newHarness(t, session.Persisting)
	h.model.replies = []scriptedReply{{fragments: []string{"pon", "g!"}}}

	out := h.run(t, "ping\n/name Trip\nagain\n/list\n/quit\n")

	assert.Contains(t, out, "gemini\npong!\n")
	assert.Contains(t, out, "Use /name NAME to automatically save")
	assert.Contains(t, out, `Chat named "Trip"`)
	assert.Contains(t, out, "[Trip] > ")

	threads, err := h.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Trip", threads[0].Name)
	assert.Equal(t, 4, threads[0].MessageCount)
	assert.Contains(t, out, "Trip (")
	assert.Contains(t, out, "4 msgs)")
}

func TestREPLParameterChangeClears(t *testing.T) {
	for _, policy := range []session.Policy{session.Stateless, session.Persisting} {
		t.Run(policy.String(), func(t *testing.T) {
			h := newHarness(t, policy)

			out := h.run(t, "hi\n/temp 0.33\n/quit\n")

			assert.Contains(t, out, "temperature 0.35")
			assert.Contains(t, out, "Generation parameters changed")
			assert.Empty(t, h.ctrl.Snapshot().Messages)
			require.Len(t, h.model.starts, 2)
			assert.Equal(t, 0.35, h.model.starts[1].Temperature)
		})
	}
}

func TestREPLRejectsBadInput(t *testing.T) {
	h := newHarness(t, session.Persisting)

	out := h.run(t, "/temp abc\n/temp 2\n/max 10\n/max 24\n/temp 1.02\n/load x\n/bogus\n/confirm\n/save\n/quit\n")

	assert.Contains(t, out, `/temp needs a number, got "abc"`)
	assert.Contains(t, out, "temperature out of range")
	assert.Contains(t, out, "max output tokens out of range")
	assert.Contains(t, out, "24 not in [50, 65000]")
	assert.Contains(t, out, "1.02 not in [0, 1]")
	assert.NotContains(t, out, ": 0 not in")
	assert.Contains(t, out, "/load needs a chat id")
	assert.Contains(t, out, "unknown command /bogus")
	assert.Contains(t, out, session.ErrNoPendingDelete.Error())
	assert.Contains(t, out, session.ErrNothingToSave.Error())
	assert.NotContains(t, out, "Error:")

	// nothing was rebuilt
	assert.Len(t, h.model.starts, 1)
}

func TestREPLSnapsInRangeValues(t *testing.T) {
	h := newHarness(t, session.Stateless)

	out := h.run(t, "/max 74\n/temp 0.98\n/quit\n")

	assert.Contains(t, out, "max output tokens 50")
	assert.Contains(t, out, "temperature 1.00")
	assert.NotContains(t, out, "out of range")
}

func TestREPLStatelessHidesHistoryCommands(t *testing.T) {
	h := newHarness(t, session.Stateless)

	out := h.run(t, "/name Trip\n/help\nhi\n/new\n/quit\n")

	assert.Contains(t, out, "/name is not available without chat history")
	assert.NotContains(t, out, "/load ID")
	assert.Contains(t, out, "/temp F")
	assert.NotContains(t, out, "Use /name NAME")
	assert.Contains(t, out, "Started a new chat.")
	assert.Empty(t, h.ctrl.Snapshot().Messages)
}

func TestREPLLoadAndDelete(t *testing.T) {
	h := newHarness(t, session.Persisting)
	id, err := h.store.CreateOrReplace(context.Background(), nil, "Trip",
		[]aisdk.Message{aisdk.UserMessage("hi"), aisdk.AssistantMessage("hello")})
	require.NoError(t, err)

	out := h.run(t, "/load 1\n/delete\nstill there?\n/confirm\n/quit\n")
	require.Equal(t, int64(1), id)

	assert.Contains(t, out, "Trip\nyou\nhi\n\ngemini\nhello\n")
	assert.Contains(t, out, "[Trip] (input disabled) > ")
	assert.Contains(t, out, session.ErrInputDisabled.Error())
	assert.Contains(t, out, "Chat deleted.")

	threads, err := h.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, threads)
	assert.Empty(t, h.ctrl.Snapshot().Messages)
}

func TestREPLRemoteFailureIsShownAndSaved(t *testing.T) {
	h := newHarness(t, session.Persisting)
	h.model.replies = []scriptedReply{
		{fragments: []string{"ok"}},
		{fragments: []string{"part"}, err: errors.New("quota exceeded")},
	}

	out := h.run(t, "/name Trip\nhi\nagain\n")

	assert.Contains(t, out, "Error: quota exceeded")

	_, msgs, err := h.store.Load(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, "Error: quota exceeded", msgs[3].Content)
}

func TestREPLEndOfInput(t *testing.T) {
	h := newHarness(t, session.Stateless)
	out := h.run(t, "hi")
	assert.Contains(t, out, "gemini\nok\n")
}
