package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"vaultEnvelopes/internal/envelope"
)

// TarotStore 塔罗牌目录存储。
type TarotStore struct {
	db *gorm.DB
}

func NewTarotStore(db *gorm.DB) *TarotStore {
	return &TarotStore{db: db}
}

// List returns the catalog ordered by name.
func (s *TarotStore) List(ctx context.Context) ([]envelope.TarotCard, error) {
	var rows []TarotCardRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tarot cards: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.Compare(rows[i].Name, rows[j].Name) < 0
	})

	out := make([]envelope.TarotCard, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Card())
	}
	return out, nil
}

func (s *TarotStore) Get(ctx context.Context, id string) (envelope.TarotCard, error) {
	var row TarotCardRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return envelope.TarotCard{}, notFound(err)
	}
	return row.Card(), nil
}

// Update 覆盖卡牌的可编辑字段。
func (s *TarotStore) Update(ctx context.Context, card envelope.TarotCard) (envelope.TarotCard, error) {
	result := s.db.WithContext(ctx).
		Model(&TarotCardRecord{}).
		Where("id = ?", card.ID).
		Updates(map[string]any{
			"name":       card.Name,
			"numeral":    card.Numeral,
			"image":      card.Image,
			"meaning":    card.Meaning,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return envelope.TarotCard{}, fmt.Errorf("update tarot card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return envelope.TarotCard{}, ErrNotFound
	}
	return s.Get(ctx, card.ID)
}

func (s *TarotStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&TarotCardRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count tarot cards: %w", err)
	}
	return n, nil
}

// PickAt returns the card at offset in id order.
func (s *TarotStore) PickAt(ctx context.Context, offset int) (envelope.TarotCard, error) {
	var row TarotCardRecord
	err := s.db.WithContext(ctx).Order("id").Offset(offset).Limit(1).Take(&row).Error
	if err != nil {
		return envelope.TarotCard{}, notFound(err)
	}
	return row.Card(), nil
}

func (s *TarotStore) CreateMany(ctx context.Context, cards []envelope.TarotCard) error {
	if len(cards) == 0 {
		return nil
	}
	rows := make([]TarotCardRecord, 0, len(cards))
	for _, card := range cards {
		rows = append(rows, newTarotCardRecord(card))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert tarot cards: %w", err)
	}
	return nil
}

func (s *TarotStore) DeleteAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TarotCardRecord{}).Error; err != nil {
		return fmt.Errorf("wipe tarot cards: %w", err)
	}
	return nil
}
