package assign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultEnvelopes/internal/envelope"
	"vaultEnvelopes/internal/kv"
)

func deck(n int) StaticCatalog {
	cards := make(StaticCatalog, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, envelope.TarotCard{ID: fmt.Sprintf("card-%02d", i), Name: fmt.Sprintf("Card %d", i)})
	}
	return cards
}

func TestCardFor_Stable(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(), deck(22))

	first, err := a.CardFor(ctx, "ana-2026-1")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := a.CardFor(ctx, "ana-2026-1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestCardFor_DistinctUntilExhausted(t *testing.T) {
	ctx := context.Background()
	const size = 22
	a := New(kv.NewMemory(), deck(size))

	seen := map[string]bool{}
	for i := 0; i < size; i++ {
		card, err := a.CardFor(ctx, fmt.Sprintf("env-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[card.ID], "card %s assigned twice before exhaustion", card.ID)
		seen[card.ID] = true
	}
	assert.Len(t, seen, size)

	// 牌堆用完后允许重复
	extra, err := a.CardFor(ctx, "env-overflow")
	require.NoError(t, err)
	assert.True(t, seen[extra.ID])
}

func TestCardFor_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	card, err := New(store, deck(5)).CardFor(ctx, "bea")
	require.NoError(t, err)

	again, err := New(store, deck(5)).CardFor(ctx, "bea")
	require.NoError(t, err)
	assert.Equal(t, card.ID, again.ID)
}

func TestCardFor_EmptyCatalog(t *testing.T) {
	_, err := New(kv.NewMemory(), StaticCatalog{}).CardFor(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestCardFor_CorruptStoreStartsOver(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, StorageKey, []byte("{not json")))

	a := New(store, deck(3), WithIntn(func(int) int { return 0 }))
	card, err := a.CardFor(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "card-00", card.ID)
	got, err := a.Assignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "card-00"}, got)
}

func TestCardFor_ReassignsRemovedCard(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, StorageKey, []byte(`{"x":"retired"}`)))

	card, err := New(store, deck(2), WithIntn(func(int) int { return 1 })).CardFor(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "card-01", card.ID)
}

// flakyStore fails the next failGets reads.
type flakyStore struct {
	kv.Store
	failGets int
}

var errStoreDown = errors.New("store unavailable")

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGets > 0 {
		f.failGets--
		return nil, false, errStoreDown
	}
	return f.Store.Get(ctx, key)
}

func TestCardFor_ReadFailureKeepsAssignments(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: kv.NewMemory()}
	a := New(store, deck(3), WithIntn(func(n int) int { return n - 1 }))

	first, err := a.CardFor(ctx, "env-1")
	require.NoError(t, err)
	assert.Equal(t, "card-02", first.ID)

	store.failGets = 1
	_, err = a.CardFor(ctx, "env-2")
	require.ErrorIs(t, err, errStoreDown)

	_, err = a.Assign(ctx, "env-3", "card-00")
	require.NoError(t, err)
	store.failGets = 1
	_, err = a.Assign(ctx, "env-4", "card-01")
	require.ErrorIs(t, err, errStoreDown)
	store.failGets = 1
	_, err = a.Assignments(ctx)
	require.ErrorIs(t, err, errStoreDown)

	got, err := a.Assignments(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env-1": "card-02", "env-3": "card-00"}, got)

	second, err := a.CardFor(ctx, "env-2")
	require.NoError(t, err)
	assert.Equal(t, "card-01", second.ID)
}

func TestCardFor_Concurrent(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(), deck(30))

	var wg sync.WaitGroup
	results := make([]string, 30)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			card, err := a.CardFor(ctx, fmt.Sprintf("env-%d", i))
			if err == nil {
				results[i] = card.ID
			}
		}(i)
	}
	wg.Wait()

	unique := map[string]struct{}{}
	for _, id := range results {
		require.NotEmpty(t, id)
		unique[id] = struct{}{}
	}
	assert.Len(t, unique, 30)
}

func TestResolve_PrefersOverride(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(), deck(3))

	env := envelope.Envelope{ID: "ana", TarotCard: &envelope.TarotRef{Name: "The Lovers", Meaning: "union"}}
	card, err := a.Resolve(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, "The Lovers", card.Name)
	assignments, err := a.Assignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)

	env.TarotCard = &envelope.TarotRef{ID: "only-id"}
	card, err = a.Resolve(ctx, env)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(card.ID, "card-"))
}

func TestAssignAndClear(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(), deck(3))

	card, err := a.Assign(ctx, "ana", "card-02")
	require.NoError(t, err)
	assert.Equal(t, "card-02", card.ID)

	got, err := a.CardFor(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "card-02", got.ID)

	_, err = a.Assign(ctx, "ana", "nope")
	assert.True(t, errors.Is(err, ErrUnknownCard))

	require.NoError(t, a.Clear(ctx))
	assignments, err := a.Assignments(ctx)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestPersonalizedMeaning(t *testing.T) {
	for i := 0; i < 5; i++ {
		out := personalizedMeaning("New beginnings.", "Ana", 2026, func(int) int { return i })
		assert.True(t, strings.HasPrefix(out, "New beginnings. "))
	}
	assert.Equal(t, "Hope. Trust in this journey, Ana.", personalizedMeaning("Hope.", "Ana", 2026, func(int) int { return 0 }))
	assert.Equal(t, "Hope. This energy surrounds you in 2026.", personalizedMeaning("Hope.", "Ana", 2026, func(int) int { return 1 }))
	assert.NotEmpty(t, PersonalizedMeaning("Hope.", "Ana"))
}
