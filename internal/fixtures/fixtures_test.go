package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultEnvelopes/internal/envelope"
)

func TestEmbeddedFixtures(t *testing.T) {
	envs, err := Envelopes()
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, "Ana", envs[0].Recipient)
	require.NotNil(t, envs[0].MemoriesPage())
	assert.Equal(t, envelope.PasswordPlaceholder, envs[1].Password)

	cards, err := TarotCards()
	require.NoError(t, err)
	require.Len(t, cards, 22)
	assert.Equal(t, "the-fool", cards[0].ID)
	assert.Equal(t, "the-world", cards[21].ID)
}

func TestParseTarotCards_KeyFillsID(t *testing.T) {
	cards, err := ParseTarotCards([]byte(`{"b":{"name":"B"},"a":{"id":"a","name":"A"}}`))
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "b", cards[0].ID)
	assert.Equal(t, "a", cards[1].ID)

	_, err = ParseTarotCards([]byte(`[{"id":"a","name":"A"}]`))
	assert.Error(t, err)

	_, err = ParseTarotCards([]byte(`{"a":{"id":"a"}}`))
	assert.ErrorIs(t, err, envelope.ErrInvalid)
}

func TestParseEnvelopes_Rejects(t *testing.T) {
	_, err := ParseEnvelopes([]byte(`[{"id":"a","recipient":"A"},{"id":"a","recipient":"B"}]`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseEnvelopes([]byte(`[{"id":"a","recipient":"A","letter":{"pages":[{"type":"nope"}]}}]`))
	assert.ErrorIs(t, err, envelope.ErrInvalid)

	_, err = ParseEnvelopes([]byte(`{}`))
	assert.Error(t, err)
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "envelopes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x-1","recipient":"X"}]`), 0o600))

	envs, err := LoadEnvelopes(path)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Equal(t, envelope.PasswordPlaceholder, envs[0].Password)

	_, err = LoadTarotCards(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	cards, err := LoadTarotCards("")
	require.NoError(t, err)
	assert.Len(t, cards, 22)
}
