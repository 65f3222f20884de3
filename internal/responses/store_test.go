package responses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	first, err := store.Record(ctx, Response{
		Form:    "survey",
		Answers: map[string]any{"subscribe": true, "terms": false, "name": "Ana"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	fixed := uuid.MustParse("6f1c1b8e-2a43-4f7e-9d55-4ad0d6a1b001")
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err = store.Record(ctx, Response{
		ID:        fixed,
		Form:      "survey",
		Answers:   map[string]any{"subscribe": false, "terms": false},
		CreatedAt: created,
	})
	require.NoError(t, err)

	_, err = store.Record(ctx, Response{ID: fixed, Form: "survey"})
	require.Error(t, err, "duplicate ids must be rejected")

	_, err = store.Record(ctx, Response{Form: "other", Answers: map[string]any{"subscribe": true}})
	require.NoError(t, err)

	got, err := store.Get(ctx, fixed)
	require.NoError(t, err)
	assert.Equal(t, "survey", got.Form)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, false, got.Answers["subscribe"])

	_, err = store.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	tallies, err := store.Tallies(ctx, "survey")
	require.NoError(t, err)
	assert.Equal(t, []Tally{
		{Question: "subscribe", Yes: 1, No: 1},
		{Question: "terms", Yes: 0, No: 2},
	}, tallies)
	assert.Equal(t, 2, tallies[1].Total())

	empty, err := store.Tallies(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	runStoreContract(t, store)
}

func TestMemoryStoreCopiesAnswers(t *testing.T) {
	store := NewMemoryStore()
	answers := map[string]any{"subscribe": true}
	saved, err := store.Record(context.Background(), Response{Form: "survey", Answers: answers})
	require.NoError(t, err)

	answers["subscribe"] = false
	got, err := store.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, true, got.Answers["subscribe"])
}

func TestRedisStoreContract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, WithPrefix("test:"))
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	runStoreContract(t, store)

	assert.True(t, mr.Exists("test:tally:survey:yes"))
	members, err := mr.ZMembers("test:responses:survey")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRedisStoreFailedWriteLeavesNoResponse(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	// A string where the tally hash belongs makes HINCRBY fail inside EXEC.
	require.NoError(t, mr.Set("test:tally:survey:yes", "broken"))

	store := NewRedisStoreFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), WithPrefix("test:"))
	defer store.Close()

	id := uuid.MustParse("6f1c1b8e-2a43-4f7e-9d55-4ad0d6a1b002")
	_, err = store.Record(context.Background(), Response{
		ID:      id,
		Form:    "survey",
		Answers: map[string]any{"subscribe": true},
	})
	require.Error(t, err)

	assert.False(t, mr.Exists("test:response:"+id.String()))
	_, err = store.Get(context.Background(), id)
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	// The id is free again once the tally key is repaired.
	mr.Del("test:tally:survey:yes")
	_, err = store.Record(context.Background(), Response{ID: id, Form: "survey", Answers: map[string]any{"subscribe": true}})
	require.NoError(t, err)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	store := NewRedisStore(addr)
	defer store.Close()
	assert.Error(t, store.Ping(context.Background()))
}
