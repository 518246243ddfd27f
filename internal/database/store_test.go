package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vaultEnvelopes/internal/envelope"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, Migrate(db), "migrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func sampleEnvelope(id, recipient string) envelope.Envelope {
	env := envelope.Envelope{
		ID:        id,
		Recipient: recipient,
		Design:    envelope.Design{Color: "#ffffff", Stamp: &envelope.Stamp{}},
		Letter: envelope.Letter{
			Pages: []envelope.Page{
				{ID: 1, Type: envelope.PageIntro, Title: "Hello " + recipient},
				{ID: 2, Type: envelope.PageMemories, Images: []string{"https://img.example/1.jpg"}},
			},
		},
	}
	env.ApplyDefaults()
	return env
}

func TestEnvelopeStore_CreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewEnvelopeStore(newTestDB(t))

	in := sampleEnvelope("ana-2026-1", "Ana")
	in.TarotCard = &envelope.TarotRef{Name: "The Star", Meaning: "hope"}
	created, err := store.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.Get(ctx, "ana-2026-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Recipient)
	assert.Equal(t, in.Letter.Pages, got.Letter.Pages)
	require.NotNil(t, got.Design.Stamp)
	assert.Equal(t, envelope.DefaultStampPosition, got.Design.Stamp.Position)
	require.NotNil(t, got.TarotCard)
	assert.Equal(t, "The Star", got.TarotCard.Name)
}

func TestEnvelopeStore_GetMissing(t *testing.T) {
	store := NewEnvelopeStore(newTestDB(t))
	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnvelopeStore_ListSortedByRecipient(t *testing.T) {
	ctx := context.Background()
	store := NewEnvelopeStore(newTestDB(t))

	require.NoError(t, store.CreateMany(ctx, []envelope.Envelope{
		sampleEnvelope("z", "zoe"),
		sampleEnvelope("b", "Bea"),
		sampleEnvelope("a", "Ana"),
	}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// 大写字母排在小写之前
	assert.Equal(t, []string{"Ana", "Bea", "zoe"}, []string{list[0].Recipient, list[1].Recipient, list[2].Recipient})
}

func TestEnvelopeStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewEnvelopeStore(newTestDB(t))

	env, err := store.Create(ctx, sampleEnvelope("ana-2026-1", "Ana"))
	require.NoError(t, err)

	env.BackgroundMusic = "https://cdn.example/song.mp3"
	env.TarotCard = nil
	updated, err := store.Update(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/song.mp3", updated.BackgroundMusic)
	assert.Nil(t, updated.TarotCard)
	assert.False(t, updated.UpdatedAt.Before(env.UpdatedAt))

	_, err = store.Update(ctx, sampleEnvelope("missing", "X"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "ana-2026-1"))
	assert.ErrorIs(t, store.Delete(ctx, "ana-2026-1"), ErrNotFound)
}

func TestTarotStore_PickAndCount(t *testing.T) {
	ctx := context.Background()
	store := NewTarotStore(newTestDB(t))

	require.NoError(t, store.CreateMany(ctx, []envelope.TarotCard{
		{ID: "the-sun", Name: "The Sun", Numeral: "XIX"},
		{ID: "the-fool", Name: "The Fool", Numeral: "0"},
		{ID: "the-moon", Name: "The Moon", Numeral: "XVIII"},
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	first, err := store.PickAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "the-fool", first.ID)

	_, err = store.PickAt(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "The Fool", list[0].Name)
	assert.Equal(t, "The Sun", list[2].Name)
}

func TestTarotStore_Update(t *testing.T) {
	ctx := context.Background()
	store := NewTarotStore(newTestDB(t))
	require.NoError(t, store.CreateMany(ctx, []envelope.TarotCard{{ID: "the-sun", Name: "The Sun"}}))

	card, err := store.Get(ctx, "the-sun")
	require.NoError(t, err)
	card.Image = "https://cdn.example/sun.png"
	updated, err := store.Update(ctx, card)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/sun.png", updated.Image)

	_, err = store.Update(ctx, envelope.TarotCard{ID: "ghost", Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminStore(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(newTestDB(t))

	admin, err := store.Create(ctx, "admin", "hash")
	require.NoError(t, err)

	found, err := store.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	require.NoError(t, store.UpdatePassword(ctx, admin.ID, "hash2"))
	found, err = store.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash2", found.PasswordHash)

	_, err = store.Create(ctx, "admin", "dup")
	assert.Error(t, err)

	require.NoError(t, store.DeleteAll(ctx))
	_, err = store.FindByUsername(ctx, "admin")
	assert.ErrorIs(t, err, ErrNotFound)
}
