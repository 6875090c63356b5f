package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/sabor-arte/internal/platform/docstore"
)

type note struct {
	Title     string `json:"title"`
	Rank      int    `json:"rank"`
	CreatedAt string `json:"createdAt"`
}

func decode(t *testing.T, docs []docstore.Document) []note {
	t.Helper()
	out := make([]note, len(docs))
	for i, d := range docs {
		require.NoError(t, d.DataTo(&out[i]))
	}
	return out
}

func TestInsertAndQuery_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, title := range []string{"c", "a", "b"} {
		_, err := store.Insert(ctx, "notes", docstore.Fields{"title": title})
		require.NoError(t, err)
	}

	docs, err := docstore.ListOnce(ctx, store, "notes")
	require.NoError(t, err)
	notes := decode(t, docs)
	require.Equal(t, []string{"c", "a", "b"}, []string{notes[0].Title, notes[1].Title, notes[2].Title})
}

func TestQuery_OrdersByFieldDescending(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	for i, title := range []string{"first", "second", "third"} {
		_, err := store.Insert(ctx, "notes", docstore.Fields{"title": title, "rank": i})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, docstore.Collection("notes").OrderedBy("rank", docstore.Descending))
	require.NoError(t, err)
	notes := decode(t, docs)
	require.Equal(t, "third", notes[0].Title)
	require.Equal(t, "first", notes[2].Title)
}

func TestServerTimestamp_IsStrictlyIncreasing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })

	for _, title := range []string{"a", "b"} {
		_, err := store.Insert(ctx, "notes", docstore.Fields{"title": title, "createdAt": docstore.ServerTimestamp})
		require.NoError(t, err)
	}

	docs, err := store.Query(ctx, docstore.Collection("notes").OrderedBy("createdAt", docstore.Descending))
	require.NoError(t, err)
	notes := decode(t, docs)
	require.Equal(t, "b", notes[0].Title)
	require.Less(t, notes[1].CreatedAt, notes[0].CreatedAt)

	parsed, err := time.Parse(docstore.TimestampLayout, notes[1].CreatedAt)
	require.NoError(t, err)
	require.Equal(t, fixed, parsed)
}

func TestUpdate_MergesTopLevelFields(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id, err := store.Insert(ctx, "notes", docstore.Fields{"title": "draft", "rank": 1})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, docstore.Path("notes", id), docstore.Fields{"rank": 7}))

	doc, err := store.Get(ctx, docstore.Path("notes", id))
	require.NoError(t, err)
	var n note
	require.NoError(t, doc.DataTo(&n))
	require.Equal(t, "draft", n.Title)
	require.Equal(t, 7, n.Rank)
	require.True(t, doc.UpdateTime.After(doc.CreateTime))
}

func TestUpdateAndDelete_MissingDocument(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	err := store.Update(ctx, "notes/missing", docstore.Fields{"rank": 1})
	require.ErrorIs(t, err, docstore.ErrNotFound)
	err = store.Delete(ctx, "notes/missing")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestCreate_RejectsExistingPath(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Create(ctx, "meta/seed", docstore.Fields{"at": docstore.ServerTimestamp}))
	err := store.Create(ctx, "meta/seed", docstore.Fields{})
	require.ErrorIs(t, err, docstore.ErrAlreadyExists)
}

func TestInvalidNames(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Insert(ctx, "bad/collection", docstore.Fields{})
	require.ErrorIs(t, err, docstore.ErrInvalidPath)
	_, err = store.Insert(ctx, "notes", docstore.Fields{"bad-field": 1})
	require.ErrorIs(t, err, docstore.ErrInvalidField)
	_, err = store.Query(ctx, docstore.Collection("notes").OrderedBy("x'; drop", docstore.Ascending))
	require.ErrorIs(t, err, docstore.ErrInvalidField)
}

func TestSubscribe_DeliversInitialAndChangedSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewStore()
	_, err := store.Insert(ctx, "notes", docstore.Fields{"title": "a"})
	require.NoError(t, err)

	sub, err := store.Subscribe(ctx, docstore.Collection("notes"))
	require.NoError(t, err)
	defer sub.Close()

	snap := <-sub.Snapshots()
	require.Len(t, snap.Docs, 1)

	_, err = store.Insert(ctx, "notes", docstore.Fields{"title": "b"})
	require.NoError(t, err)
	snap = <-sub.Snapshots()
	require.Len(t, snap.Docs, 2)

	// writes to other collections are not delivered
	_, err = store.Insert(ctx, "other", docstore.Fields{"title": "x"})
	require.NoError(t, err)
	select {
	case <-sub.Snapshots():
		t.Fatal("unexpected snapshot for unrelated collection")
	default:
	}
}

func TestSubscribe_EndsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore()

	sub, err := store.Subscribe(ctx, docstore.Collection("notes"))
	require.NoError(t, err)
	<-sub.Snapshots()

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-sub.Snapshots():
			if open {
				return false
			}
		default:
			return false
		}
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.watchers) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestFailOn_InjectsErrors(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	boom := errors.New("unavailable")

	store.FailOn("insert", boom)
	_, err := store.Insert(ctx, "notes", docstore.Fields{"title": "a"})
	require.ErrorIs(t, err, boom)

	store.FailOn("insert", nil)
	_, err = store.Insert(ctx, "notes", docstore.Fields{"title": "a"})
	require.NoError(t, err)
}
