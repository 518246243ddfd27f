package envelope

import (
	"fmt"
	"strings"
)

// PageKind 信纸页面类型，集合封闭。新增类型需同时更新 Validate。
type PageKind string

const (
	PageIntro       PageKind = "intro"
	PageRecap       PageKind = "recap"
	PageSpotify     PageKind = "spotify"
	PageMovies      PageKind = "movies"
	PageMemories    PageKind = "memories"
	PageTarot       PageKind = "tarot"
	PageYoutube     PageKind = "youtube"
	PageMantra      PageKind = "mantra"
	PageTyping      PageKind = "typing"
	PageGif         PageKind = "gif"
	PageCelebration PageKind = "celebration"
)

// PageKinds lists every accepted kind in builder order.
var PageKinds = []PageKind{
	PageIntro, PageRecap, PageSpotify, PageMovies, PageMemories, PageTarot,
	PageYoutube, PageMantra, PageTyping, PageGif, PageCelebration,
}

// Page is one screen of a letter. Which optional fields matter depends on Type.
type Page struct {
	ID          int      `json:"id,omitempty"`
	Type        PageKind `json:"type"`
	Title       string   `json:"title,omitempty"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Content     string   `json:"content,omitempty"`
	PlaylistURL string   `json:"playlistUrl,omitempty"`
	List        []string `json:"list,omitempty"`
	Images      []string `json:"images,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	CustomText  string   `json:"customText,omitempty"`
	GifURL      string   `json:"gifUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	Members     []string `json:"members,omitempty"`
}

// Validate only checks that the kind belongs to the closed set; the per-kind fields are free-form.
func (p Page) Validate() error {
	switch p.Type {
	case PageIntro, PageRecap, PageSpotify, PageMovies, PageMemories, PageTarot,
		PageYoutube, PageMantra, PageTyping, PageGif, PageCelebration:
		return nil
	default:
		return fmt.Errorf("%w: unknown page type %q", ErrInvalid, p.Type)
	}
}

// normalize 去掉列表中的空白项，编辑器按行拆分时会产生空行。
func (p *Page) normalize() {
	p.List = dropBlank(p.List)
	p.Images = dropBlank(p.Images)
	p.Members = dropBlank(p.Members)
}

func dropBlank(values []string) []string {
	if values == nil {
		return nil
	}
	kept := values[:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	return kept
}
