// Package seed 清空并重新导入信封、塔罗牌与管理员数据。
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"vaultEnvelopes/internal/auth"
	"vaultEnvelopes/internal/database"
	"vaultEnvelopes/internal/envelope"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Credentials 初始管理员账号。
type Credentials struct {
	Username string
	Password string
}

// WithDefaults fills blank fields with admin/admin123.
func (c Credentials) WithDefaults() Credentials {
	if strings.TrimSpace(c.Username) == "" {
		c.Username = DefaultAdminUsername
	}
	if c.Password == "" {
		c.Password = DefaultAdminPassword
	}
	return c
}

// Data 待导入的数据集。
type Data struct {
	Envelopes  []envelope.Envelope
	TarotCards []envelope.TarotCard
	Admin      Credentials
}

// Result 导入统计。
type Result struct {
	Envelopes  int
	TarotCards int
	Admin      string
}

// Run 在单个事务中清空三张表并导入数据，任一步失败整体回滚。
func Run(ctx context.Context, db *gorm.DB, data Data, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	creds := data.Admin.WithDefaults()
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return Result{}, fmt.Errorf("hash admin password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		envelopes := database.NewEnvelopeStore(tx)
		tarot := database.NewTarotStore(tx)
		admins := database.NewAdminStore(tx)

		if err := envelopes.DeleteAll(ctx); err != nil {
			return err
		}
		if err := tarot.DeleteAll(ctx); err != nil {
			return err
		}
		if err := admins.DeleteAll(ctx); err != nil {
			return err
		}
		logger.Info("cleared existing data")

		if err := envelopes.CreateMany(ctx, data.Envelopes); err != nil {
			return err
		}
		logger.Info("imported envelopes", slog.Int("count", len(data.Envelopes)))

		if err := tarot.CreateMany(ctx, data.TarotCards); err != nil {
			return err
		}
		logger.Info("imported tarot cards", slog.Int("count", len(data.TarotCards)))

		if _, err := admins.Create(ctx, creds.Username, hash); err != nil {
			return err
		}
		logger.Info("created admin user", slog.String("username", creds.Username))
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed database: %w", err)
	}

	return Result{
		Envelopes:  len(data.Envelopes),
		TarotCards: len(data.TarotCards),
		Admin:      creds.Username,
	}, nil
}
