// Package envelope 定义信封、信纸页面与塔罗牌的领域模型及其校验规则。
package envelope

import (
	"errors"
	"time"
)

// PasswordPlaceholder 表示尚未设置解锁口令。
const PasswordPlaceholder = "placeholder"

// Stamp defaults applied whenever a stamp is present.
const (
	DefaultStampPosition = "top-right"
	DefaultStampSize     = 0.3
)

// ErrInvalid wraps every schema violation.
var ErrInvalid = errors.New("invalid envelope data")

// Envelope 表示某位收件人的完整礼物包。
type Envelope struct {
	ID              string    `json:"id" validate:"required,max=160"`
	Recipient       string    `json:"recipient" validate:"required,max=255"`
	Initials        string    `json:"initials,omitempty" validate:"max=32"`
	Design          Design    `json:"envelope"`
	Letter          Letter    `json:"letter"`
	Password        string    `json:"password"`
	BackgroundMusic string    `json:"backgroundMusic,omitempty"`
	TarotCard       *TarotRef `json:"tarotCard,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Design 描述信封外观。
type Design struct {
	Color   string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Texture string `json:"texture,omitempty" validate:"omitempty,envtexture"`
	Stamp   *Stamp `json:"stamp,omitempty"`
}

// Stamp 邮票，Size 为相对信封宽度的比例。
type Stamp struct {
	Image         string   `json:"image,omitempty"`
	FallbackColor string   `json:"fallbackColor,omitempty" validate:"omitempty,hexcolor"`
	Position      string   `json:"position,omitempty" validate:"omitempty,stampposition"`
	Size          *float64 `json:"size,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Letter 信纸样式与有序页面。
type Letter struct {
	PaperTexture string `json:"paperTexture,omitempty" validate:"omitempty,papertexture"`
	FontPairing  string `json:"fontPairing,omitempty" validate:"omitempty,fontpairing"`
	AccentColor  string `json:"accentColor,omitempty" validate:"omitempty,hexcolor"`
	Pages        []Page `json:"pages"`
}

// TarotRef is a tarot card embedded by value; a non-empty Name overrides random assignment.
type TarotRef struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Image   string `json:"image,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

// HasOverride reports whether the embedded card should be shown verbatim.
func (r *TarotRef) HasOverride() bool {
	return r != nil && r.Name != ""
}

// TarotCard 塔罗牌目录条目。
type TarotCard struct {
	ID        string    `json:"id" validate:"required,max=64"`
	Name      string    `json:"name" validate:"required,max=128"`
	Numeral   string    `json:"numeral,omitempty" validate:"max=16"`
	Image     string    `json:"image,omitempty"`
	Meaning   string    `json:"meaning,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ApplyDefaults fills the values the schema defaults to.
func (e *Envelope) ApplyDefaults() {
	if e.Password == "" {
		e.Password = PasswordPlaceholder
	}
	if e.Design.Stamp != nil {
		if e.Design.Stamp.Position == "" {
			e.Design.Stamp.Position = DefaultStampPosition
		}
		if e.Design.Stamp.Size == nil {
			size := DefaultStampSize
			e.Design.Stamp.Size = &size
		}
	}
	if e.Letter.Pages == nil {
		e.Letter.Pages = []Page{}
	}
	for i := range e.Letter.Pages {
		e.Letter.Pages[i].normalize()
	}
}

// PasswordMatches 逐字节比较口令，区分大小写。
func (e *Envelope) PasswordMatches(candidate string) bool {
	return e.Password == candidate
}

// MemoriesPage returns the first page of kind memories, or nil.
func (e *Envelope) MemoriesPage() *Page {
	for i := range e.Letter.Pages {
		if e.Letter.Pages[i].Type == PageMemories {
			return &e.Letter.Pages[i]
		}
	}
	return nil
}

// AddMemoryImage appends url to the first memories page. It reports false when no such page exists.
func (e *Envelope) AddMemoryImage(url string) bool {
	page := e.MemoriesPage()
	if page == nil {
		return false
	}
	page.Images = append(page.Images, url)
	return true
}

// RemoveMemoryImage drops every occurrence of url from the first memories page.
func (e *Envelope) RemoveMemoryImage(url string) bool {
	page := e.MemoriesPage()
	if page == nil || len(page.Images) == 0 {
		return false
	}
	kept := make([]string, 0, len(page.Images))
	for _, img := range page.Images {
		if img != url {
			kept = append(kept, img)
		}
	}
	removed := len(kept) != len(page.Images)
	page.Images = kept
	return removed
}

// SetStampImage creates the stamp when missing and points it at url.
func (e *Envelope) SetStampImage(url string) {
	if e.Design.Stamp == nil {
		e.Design.Stamp = &Stamp{}
	}
	e.Design.Stamp.Image = url
}

// Card converts the embedded reference to a catalog card shape.
func (r *TarotRef) Card() TarotCard {
	return TarotCard{
		ID:      r.ID,
		Name:    r.Name,
		Image:   r.Image,
		Meaning: r.Meaning,
	}
}
