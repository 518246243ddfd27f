package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultEnvelopes/internal/envelope"
)

// Admin 表示后台管理员账号。
type Admin struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
}

// EnvelopeRecord 信封文档。设计、信纸与塔罗覆盖以 JSON 列存储。
type EnvelopeRecord struct {
	ID              string                                 `gorm:"primaryKey;size:160"`
	Recipient       string                                 `gorm:"size:255;index"`
	Initials        string                                 `gorm:"size:32"`
	Design          datatypes.JSONType[envelope.Design]    `gorm:"column:envelope"`
	Letter          datatypes.JSONType[envelope.Letter]    `gorm:"column:letter"`
	Password        string                                 `gorm:"size:255"`
	BackgroundMusic string                                 `gorm:"size:1024"`
	TarotCard       datatypes.JSONType[*envelope.TarotRef] `gorm:"column:tarot_card"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (EnvelopeRecord) TableName() string { return "envelopes" }

// TarotCardRecord 塔罗牌目录条目。
type TarotCardRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Name      string `gorm:"size:128;index"`
	Numeral   string `gorm:"size:16"`
	Image     string `gorm:"size:1024"`
	Meaning   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TarotCardRecord) TableName() string { return "tarot_cards" }

// Migrate 创建或更新全部表结构。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Admin{}, &EnvelopeRecord{}, &TarotCardRecord{})
}

func newEnvelopeRecord(env envelope.Envelope) EnvelopeRecord {
	return EnvelopeRecord{
		ID:              env.ID,
		Recipient:       env.Recipient,
		Initials:        env.Initials,
		Design:          datatypes.NewJSONType(env.Design),
		Letter:          datatypes.NewJSONType(env.Letter),
		Password:        env.Password,
		BackgroundMusic: env.BackgroundMusic,
		TarotCard:       datatypes.NewJSONType(env.TarotCard),
		CreatedAt:       env.CreatedAt,
		UpdatedAt:       env.UpdatedAt,
	}
}

// Envelope converts the row back to the domain shape.
func (r EnvelopeRecord) Envelope() envelope.Envelope {
	env := envelope.Envelope{
		ID:              r.ID,
		Recipient:       r.Recipient,
		Initials:        r.Initials,
		Design:          r.Design.Data(),
		Letter:          r.Letter.Data(),
		Password:        r.Password,
		BackgroundMusic: r.BackgroundMusic,
		TarotCard:       r.TarotCard.Data(),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if env.Letter.Pages == nil {
		env.Letter.Pages = []envelope.Page{}
	}
	return env
}

func newTarotCardRecord(card envelope.TarotCard) TarotCardRecord {
	return TarotCardRecord{
		ID:        card.ID,
		Name:      card.Name,
		Numeral:   card.Numeral,
		Image:     card.Image,
		Meaning:   card.Meaning,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

// Card converts the row back to the domain shape.
func (r TarotCardRecord) Card() envelope.TarotCard {
	return envelope.TarotCard{
		ID:        r.ID,
		Name:      r.Name,
		Numeral:   r.Numeral,
		Image:     r.Image,
		Meaning:   r.Meaning,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
