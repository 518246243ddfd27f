package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultEnvelopes/internal/envelope"
)

// EnvelopeStore 基于 GORM 的信封文档存储。
type EnvelopeStore struct {
	db *gorm.DB
}

func NewEnvelopeStore(db *gorm.DB) *EnvelopeStore {
	return &EnvelopeStore{db: db}
}

// List returns every envelope ordered by recipient, compared byte-wise.
func (s *EnvelopeStore) List(ctx context.Context) ([]envelope.Envelope, error) {
	var rows []EnvelopeRecord
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list envelopes: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := strings.Compare(rows[i].Recipient, rows[j].Recipient); c != 0 {
			return c < 0
		}
		return rows[i].ID < rows[j].ID
	})

	out := make([]envelope.Envelope, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Envelope())
	}
	return out, nil
}

func (s *EnvelopeStore) Get(ctx context.Context, id string) (envelope.Envelope, error) {
	var row EnvelopeRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return envelope.Envelope{}, notFound(err)
	}
	return row.Envelope(), nil
}

// Create 插入新信封，时间戳由存储层填写。
func (s *EnvelopeStore) Create(ctx context.Context, env envelope.Envelope) (envelope.Envelope, error) {
	row := newEnvelopeRecord(env)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return envelope.Envelope{}, fmt.Errorf("create envelope: %w", err)
	}
	return row.Envelope(), nil
}

// Update 覆盖除 ID 与创建时间以外的全部字段。
func (s *EnvelopeStore) Update(ctx context.Context, env envelope.Envelope) (envelope.Envelope, error) {
	result := s.db.WithContext(ctx).
		Model(&EnvelopeRecord{}).
		Where("id = ?", env.ID).
		Updates(map[string]any{
			"recipient":        env.Recipient,
			"initials":         env.Initials,
			"envelope":         datatypes.NewJSONType(env.Design),
			"letter":           datatypes.NewJSONType(env.Letter),
			"password":         env.Password,
			"background_music": env.BackgroundMusic,
			"tarot_card":       datatypes.NewJSONType(env.TarotCard),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return envelope.Envelope{}, fmt.Errorf("update envelope: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return envelope.Envelope{}, ErrNotFound
	}
	return s.Get(ctx, env.ID)
}

func (s *EnvelopeStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&EnvelopeRecord{})
	if result.Error != nil {
		return fmt.Errorf("delete envelope: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateMany 批量插入，用于数据导入。
func (s *EnvelopeStore) CreateMany(ctx context.Context, envs []envelope.Envelope) error {
	if len(envs) == 0 {
		return nil
	}
	rows := make([]EnvelopeRecord, 0, len(envs))
	for _, env := range envs {
		rows = append(rows, newEnvelopeRecord(env))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert envelopes: %w", err)
	}
	return nil
}

func (s *EnvelopeStore) DeleteAll(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&EnvelopeRecord{}).Error; err != nil {
		return fmt.Errorf("wipe envelopes: %w", err)
	}
	return nil
}
