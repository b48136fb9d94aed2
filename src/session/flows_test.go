package session

import (
	"context"
	"testing"

	"github.com/elee1766/gemchat/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newChatting returns a persisting controller holding one unsaved exchange.
func newChatting(t *testing.T, store Store) (*Controller, *fakeModel) {
	t.Helper()
	model := &fakeModel{}
	c := New(model, store, Persisting, nil)
	c.Reconcile(defaultParams)
	_, err := c.Send(context.Background(), "hi", defaultParams, nil)
	require.NoError(t, err)
	return c, model
}

func TestStartNewBlockedWhenUnnamed(t *testing.T) {
	c, _ := newChatting(t, newTestStore(t))
	before := c.Snapshot()

	assert.ErrorIs(t, c.StartNew(context.Background()), ErrNameRequired)
	assert.Equal(t, before, c.Snapshot())
	assert.True(t, c.HasSession())
}

func TestStartNewSavesNamedConversation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	c, model := newChatting(t, store)
	require.NoError(t, c.Rename(ctx, "Kept"))

	require.NoError(t, c.StartNew(ctx))

	snap := c.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Nil(t, snap.ThreadID)
	assert.Empty(t, snap.ChatName)
	assert.False(t, c.HasSession())

	threads, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Kept", threads[0].Name)
	assert.Equal(t, 2, threads[0].MessageCount)

	// the next cycle rebuilds without calling it a parameter change
	out := c.Reconcile(defaultParams)
	assert.True(t, out.Rebuilt)
	assert.False(t, out.Cleared)
	assert.Len(t, model.starts, 2)
}

func TestStartNewOnEmptyConversation(t *testing.T) {
	c := New(&fakeModel{}, newTestStore(t), Persisting, nil)
	c.Reconcile(defaultParams)
	assert.NoError(t, c.StartNew(context.Background()))
}

func TestLoadActiveThreadIsNoop(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id, err := store.CreateOrReplace(ctx, nil, "A", msgs("a1", "a2"))
	require.NoError(t, err)

	c := New(&fakeModel{}, store, Persisting, nil)
	c.Reconcile(defaultParams)
	require.NoError(t, c.Load(ctx, id))
	c.Reconcile(defaultParams)

	require.NoError(t, c.Load(ctx, id))
	assert.False(t, c.Snapshot().LoadingChat)
	assert.True(t, c.HasSession())
}

func TestLoadBlockedWhenUnnamed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id, err := store.CreateOrReplace(ctx, nil, "A", msgs("a1", "a2"))
	require.NoError(t, err)

	c, _ := newChatting(t, store)
	before := c.Snapshot()

	assert.ErrorIs(t, c.Load(ctx, id), ErrUnsavedChanges)
	assert.Equal(t, before, c.Snapshot())
}

func TestLoadSavesNamedConversationFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	target, err := store.CreateOrReplace(ctx, nil, "Target", msgs("t1", "t2"))
	require.NoError(t, err)

	c, _ := newChatting(t, store)
	require.NoError(t, c.Rename(ctx, "Draft"))
	require.NoError(t, c.Load(ctx, target))

	threads, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	names := []string{threads[0].Name, threads[1].Name}
	assert.ElementsMatch(t, []string{"Draft", "Target"}, names)

	snap := c.Snapshot()
	assert.Equal(t, "Target", snap.ChatName)
	assert.Equal(t, msgs("t1", "t2"), snap.Messages)
	assert.False(t, snap.ConfirmDelete)
}

func TestLoadMissingThreadKeepsState(t *testing.T) {
	ctx := context.Background()
	c := New(&fakeModel{}, newTestStore(t), Persisting, nil)
	c.Reconcile(defaultParams)
	before := c.Snapshot()

	err := c.Load(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrThreadNotFound)
	assert.Equal(t, before, c.Snapshot())
	assert.True(t, c.HasSession())
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to save", func(t *testing.T) {
		c := New(&fakeModel{}, newTestStore(t), Persisting, nil)
		require.NoError(t, c.Rename(ctx, "Empty"))
		assert.ErrorIs(t, c.Save(ctx), ErrNothingToSave)
	})

	t.Run("name required", func(t *testing.T) {
		c, _ := newChatting(t, newTestStore(t))
		assert.ErrorIs(t, c.Save(ctx), ErrNameRequired)
		assert.Nil(t, c.Snapshot().ThreadID)
	})

	t.Run("stateless has no store", func(t *testing.T) {
		c := New(&fakeModel{}, nil, Stateless, nil)
		assert.ErrorIs(t, c.Save(ctx), ErrNoStore)
	})

	t.Run("binds the thread", func(t *testing.T) {
		store := newTestStore(t)
		c, _ := newChatting(t, store)
		require.NoError(t, c.Rename(ctx, "Bound"))
		require.NoError(t, c.Save(ctx))

		id := c.Snapshot().ThreadID
		require.NotNil(t, id)
		require.NoError(t, c.Save(ctx))
		assert.Equal(t, id, c.Snapshot().ThreadID)

		threads, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, threads, 1)
	})
}

func TestRename(t *testing.T) {
	ctx := context.Background()

	t.Run("saved thread is written immediately", func(t *testing.T) {
		store := newTestStore(t)
		c, _ := newChatting(t, store)
		require.NoError(t, c.Rename(ctx, "Before"))
		require.NoError(t, c.Save(ctx))

		require.NoError(t, c.Rename(ctx, "  After "))
		assert.Equal(t, "After", c.Snapshot().ChatName)

		name, _, err := store.Load(ctx, *c.Snapshot().ThreadID)
		require.NoError(t, err)
		assert.Equal(t, "After", name)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		c := New(&fakeModel{}, nil, Persisting, nil)
		assert.ErrorIs(t, c.Rename(ctx, "   "), storage.ErrEmptyName)
	})

	t.Run("failed save keeps old name", func(t *testing.T) {
		store := &failingStore{Store: newTestStore(t)}
		c, _ := newChatting(t, store)
		require.NoError(t, c.Rename(ctx, "Old"))
		require.NoError(t, c.Save(ctx))

		store.failSave = true
		assert.ErrorIs(t, c.Rename(ctx, "New"), errStoreDown)
		assert.Equal(t, "Old", c.Snapshot().ChatName)
	})
}

func TestDeleteFlow(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id, err := store.CreateOrReplace(ctx, nil, "Doomed", msgs("d1", "d2"))
	require.NoError(t, err)

	c := New(&fakeModel{}, store, Persisting, nil)
	c.Reconcile(defaultParams)

	assert.ErrorIs(t, c.RequestDelete(), ErrNoActiveThread)
	assert.ErrorIs(t, c.ConfirmDelete(ctx), ErrNoPendingDelete)

	require.NoError(t, c.Load(ctx, id))
	c.Reconcile(defaultParams)

	// cancel leaves everything in place
	require.NoError(t, c.RequestDelete())
	assert.True(t, c.Snapshot().ConfirmDelete)
	c.CancelDelete()
	assert.False(t, c.Snapshot().ConfirmDelete)
	_, _, err = store.Load(ctx, id)
	require.NoError(t, err)

	require.NoError(t, c.RequestDelete())
	require.NoError(t, c.ConfirmDelete(ctx))

	snap := c.Snapshot()
	assert.Empty(t, snap.Messages)
	assert.Nil(t, snap.ThreadID)
	assert.Empty(t, snap.ChatName)
	assert.False(t, snap.ConfirmDelete)
	assert.False(t, c.HasSession())

	_, _, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, storage.ErrThreadNotFound)
	count, err := store.CountMessages(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestConfirmDeleteFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	inner := newTestStore(t)
	id, err := inner.CreateOrReplace(ctx, nil, "Sticky", msgs("s1", "s2"))
	require.NoError(t, err)
	store := &failingStore{Store: inner, failDelete: true}

	c := New(&fakeModel{}, store, Persisting, nil)
	c.Reconcile(defaultParams)
	require.NoError(t, c.Load(ctx, id))
	c.Reconcile(defaultParams)
	require.NoError(t, c.RequestDelete())

	assert.ErrorIs(t, c.ConfirmDelete(ctx), errStoreDown)
	snap := c.Snapshot()
	assert.Equal(t, msgs("s1", "s2"), snap.Messages)
	assert.True(t, snap.ConfirmDelete)
	require.NotNil(t, snap.ThreadID)
	assert.Equal(t, id, *snap.ThreadID)
}

func TestClear(t *testing.T) {
	model := &fakeModel{}
	c := New(model, nil, Stateless, nil)
	c.Reconcile(defaultParams)
	_, err := c.Send(context.Background(), "hi", defaultParams, nil)
	require.NoError(t, err)

	c.Clear()
	assert.Empty(t, c.Snapshot().Messages)
	assert.False(t, c.HasSession())

	out := c.Reconcile(otherParams)
	assert.True(t, out.Rebuilt)
	assert.False(t, out.Refresh)
	assert.Equal(t, otherParams, model.starts[len(model.starts)-1].params)
}

func TestThreadsWithoutStore(t *testing.T) {
	c := New(&fakeModel{}, nil, Stateless, nil)
	_, err := c.Threads(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)
}
