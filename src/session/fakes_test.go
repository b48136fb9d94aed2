package session

import (
	"context"
	"errors"
	"testing"

	"github.com/elee1766/gemchat/src/aisdk"
	"github.com/elee1766/gemchat/src/storage"
	"github.com/stretchr/testify/require"
)

type reply struct {
	fragments []string
	streamErr error
	sendErr   error
}

type startCall struct {
	history []aisdk.Message
	params  aisdk.GenerationParams
}

// fakeModel hands out scripted replies in order and records every session
// start and every sent text.
type fakeModel struct {
	replies []reply
	starts  []startCall
	sent    []string
}

func (m *fakeModel) StartChat(history []aisdk.Message, params aisdk.GenerationParams) aisdk.ChatSession {
	m.starts = append(m.starts, startCall{history: aisdk.CloneMessages(history), params: params})
	return &fakeSession{model: m, params: params}
}

func (m *fakeModel) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{ID: "fake"}
}

type fakeSession struct {
	model  *fakeModel
	params aisdk.GenerationParams
}

func (s *fakeSession) SendStream(ctx context.Context, text string, params aisdk.GenerationParams) (aisdk.StreamInterface, error) {
	s.model.sent = append(s.model.sent, text)
	r := reply{fragments: []string{"ok"}}
	if len(s.model.replies) > 0 {
		r, s.model.replies = s.model.replies[0], s.model.replies[1:]
	}
	if r.sendErr != nil {
		return nil, r.sendErr
	}
	stream := aisdk.NewSliceStream(r.fragments...)
	stream.Err = r.streamErr
	return stream, nil
}

func (s *fakeSession) History() []aisdk.Message        { return nil }
func (s *fakeSession) Params() aisdk.GenerationParams { return s.params }

// failingStore wraps a real store and fails the selected operations.
type failingStore struct {
	Store
	failSave   bool
	failDelete bool
	saves      int
}

var errStoreDown = errors.New("disk I/O error")

func (f *failingStore) CreateOrReplace(ctx context.Context, threadID *int64, name string, msgs []aisdk.Message) (int64, error) {
	f.saves++
	if f.failSave {
		return 0, errStoreDown
	}
	return f.Store.CreateOrReplace(ctx, threadID, name, msgs)
}

func (f *failingStore) Delete(ctx context.Context, threadID int64) error {
	if f.failDelete {
		return errStoreDown
	}
	return f.Store.Delete(ctx, threadID)
}

func newTestStore(t *testing.T) *storage.ThreadStore {
	t.Helper()
	db, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewThreadStore(db, nil)
}

var (
	defaultParams = aisdk.GenerationParams{Temperature: 0.7, MaxOutputTokens: 65000}
	otherParams   = aisdk.GenerationParams{Temperature: 0.2, MaxOutputTokens: 65000}
)

func msgs(pairs ...string) []aisdk.Message {
	var out []aisdk.Message
	for i, p := range pairs {
		if i%2 == 0 {
			out = append(out, aisdk.UserMessage(p))
		} else {
			out = append(out, aisdk.AssistantMessage(p))
		}
	}
	return out
}
