package envelope

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() Envelope {
	return Envelope{
		ID:        "ana-2026-7",
		Recipient: "Ana",
		Design: Design{
			Color:   "#c9a66b",
			Texture: "linen",
			Stamp:   &Stamp{FallbackColor: "#aa3344"},
		},
		Letter: Letter{
			PaperTexture: "vintage-cream",
			FontPairing:  "classic",
			AccentColor:  "#333",
			Pages: []Page{
				{ID: 1, Type: PageIntro, Title: "Hi"},
				{ID: 2, Type: PageMemories, Images: []string{"https://img.example/a.jpg"}},
			},
		},
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Ana Maria":   "ana-maria",
		"Dr. Who!!":   "dr-who-",
		"  x  ":       "-x-",
		"":            "envelope",
		"!!!":         "-",
		"Zoë":         "zo-",
		"Team 2026 ✨": "team-2026-",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "slug(%q)", in)
	}
}

func TestNewID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9-]+-\d{4}-\d{1,3}$`)
	for _, name := range []string{"Ana", "", "***", "Mary Jane Watson"} {
		id := NewID(name)
		assert.Regexp(t, pattern, id)
		assert.True(t, strings.Contains(id, "-"+time.Now().Format("2006")+"-"))
	}
}

func TestFormatID(t *testing.T) {
	now := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "ana-maria-2025-42", FormatID("Ana  Maria", now, 42))
	assert.Equal(t, "envelope-2025-0", FormatID("", now, 0))
}

func TestApplyDefaults(t *testing.T) {
	env := Envelope{Recipient: "Ana", Design: Design{Stamp: &Stamp{}}}
	env.ApplyDefaults()

	assert.Equal(t, PasswordPlaceholder, env.Password)
	assert.Equal(t, DefaultStampPosition, env.Design.Stamp.Position)
	require.NotNil(t, env.Design.Stamp.Size)
	assert.InDelta(t, DefaultStampSize, *env.Design.Stamp.Size, 1e-9)
	assert.NotNil(t, env.Letter.Pages)
}

func TestPasswordMatches_ExactBytes(t *testing.T) {
	env := Envelope{Password: "Moon"}
	assert.True(t, env.PasswordMatches("Moon"))
	assert.False(t, env.PasswordMatches("moon"))
	assert.False(t, env.PasswordMatches("Moon "))
	assert.False(t, env.PasswordMatches(""))
}

func TestValidate(t *testing.T) {
	env := validEnvelope()
	require.NoError(t, env.Validate())

	t.Run("missing recipient", func(t *testing.T) {
		e := validEnvelope()
		e.Recipient = ""
		assert.True(t, errors.Is(e.Validate(), ErrInvalid))
	})
	t.Run("unknown texture", func(t *testing.T) {
		e := validEnvelope()
		e.Design.Texture = "velvet"
		assert.ErrorIs(t, e.Validate(), ErrInvalid)
	})
	t.Run("bad color", func(t *testing.T) {
		e := validEnvelope()
		e.Letter.AccentColor = "red"
		assert.ErrorIs(t, e.Validate(), ErrInvalid)
	})
	t.Run("stamp size out of range", func(t *testing.T) {
		e := validEnvelope()
		size := 1.5
		e.Design.Stamp.Size = &size
		assert.ErrorIs(t, e.Validate(), ErrInvalid)
	})
	t.Run("unknown page kind", func(t *testing.T) {
		e := validEnvelope()
		e.Letter.Pages = append(e.Letter.Pages, Page{Type: "poll"})
		assert.ErrorIs(t, e.Validate(), ErrInvalid)
	})
	t.Run("links without scheme are accepted", func(t *testing.T) {
		e := validEnvelope()
		e.Letter.Pages = append(e.Letter.Pages,
			Page{Type: PageSpotify, PlaylistURL: "open.spotify.com/playlist/abc"},
			Page{Type: PageYoutube, VideoURL: "youtu.be/xyz"},
		)
		assert.NoError(t, e.Validate())
	})
}

func TestApplyDefaults_DropsBlankListEntries(t *testing.T) {
	env := validEnvelope()
	env.Letter.Pages = append(env.Letter.Pages, Page{Type: PageMovies, List: []string{"Past Lives", "", "  ", "Aftersun"}})
	env.Letter.Pages[1].Images = []string{"", "https://img.example/a.jpg"}
	env.ApplyDefaults()

	require.NoError(t, env.Validate())
	assert.Equal(t, []string{"Past Lives", "Aftersun"}, env.Letter.Pages[2].List)
	assert.Equal(t, []string{"https://img.example/a.jpg"}, env.Letter.Pages[1].Images)
}

func TestPageKinds_AllValidate(t *testing.T) {
	for _, kind := range PageKinds {
		assert.NoError(t, Page{Type: kind}.Validate(), kind)
	}
}

func TestMemoryImages_AddThenRemoveRestores(t *testing.T) {
	env := validEnvelope()
	before := append([]string(nil), env.MemoriesPage().Images...)

	require.True(t, env.AddMemoryImage("https://img.example/new.jpg"))
	assert.Len(t, env.MemoriesPage().Images, len(before)+1)

	require.True(t, env.RemoveMemoryImage("https://img.example/new.jpg"))
	assert.ElementsMatch(t, before, env.MemoriesPage().Images)
}

func TestMemoryImages_NoMemoriesPage(t *testing.T) {
	env := validEnvelope()
	env.Letter.Pages = []Page{{Type: PageIntro}}
	assert.False(t, env.AddMemoryImage("https://img.example/x.jpg"))
	assert.False(t, env.RemoveMemoryImage("https://img.example/x.jpg"))
}

func TestSetStampImage_CreatesStamp(t *testing.T) {
	env := Envelope{}
	env.SetStampImage("https://img.example/stamp.png")
	require.NotNil(t, env.Design.Stamp)
	assert.Equal(t, "https://img.example/stamp.png", env.Design.Stamp.Image)
}

func TestTarotRef_HasOverride(t *testing.T) {
	var ref *TarotRef
	assert.False(t, ref.HasOverride())
	assert.False(t, (&TarotRef{ID: "the-star"}).HasOverride())
	assert.True(t, (&TarotRef{Name: "The Star"}).HasOverride())
}
