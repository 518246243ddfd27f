package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_KeepsUntouchedNestedFields(t *testing.T) {
	current := validEnvelope()

	merged, err := Merge(current, []byte(`{"letter":{"paperTexture":"parchment"},"initials":"AM"}`))
	require.NoError(t, err)

	assert.Equal(t, "parchment", merged.Letter.PaperTexture)
	assert.Equal(t, "classic", merged.Letter.FontPairing)
	assert.Equal(t, current.Letter.Pages, merged.Letter.Pages)
	assert.Equal(t, "AM", merged.Initials)
	assert.Equal(t, current.Design, merged.Design)
}

func TestMerge_ArraysReplace(t *testing.T) {
	current := validEnvelope()

	merged, err := Merge(current, []byte(`{"letter":{"pages":[{"id":9,"type":"tarot"}]}}`))
	require.NoError(t, err)

	require.Len(t, merged.Letter.Pages, 1)
	assert.Equal(t, PageTarot, merged.Letter.Pages[0].Type)
}

func TestMerge_NullRemovesOverride(t *testing.T) {
	current := validEnvelope()
	current.TarotCard = &TarotRef{Name: "The Sun"}

	merged, err := Merge(current, []byte(`{"tarotCard":null}`))
	require.NoError(t, err)
	assert.Nil(t, merged.TarotCard)
}

func TestMerge_IgnoresSystemFields(t *testing.T) {
	current := validEnvelope()

	merged, err := Merge(current, []byte(`{"id":"hijack","recipient":"Bea"}`))
	require.NoError(t, err)
	assert.Equal(t, current.ID, merged.ID)
	assert.Equal(t, "Bea", merged.Recipient)
}

func TestMerge_RejectsNonObject(t *testing.T) {
	_, err := Merge(validEnvelope(), []byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Merge(validEnvelope(), []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMerge_TypeMismatch(t *testing.T) {
	_, err := Merge(validEnvelope(), []byte(`{"recipient":5}`))
	assert.ErrorIs(t, err, ErrInvalid)
}
