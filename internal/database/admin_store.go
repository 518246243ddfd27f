package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AdminStore 管理员账号存储。
type AdminStore struct {
	db *gorm.DB
}

func NewAdminStore(db *gorm.DB) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) FindByUsername(ctx context.Context, username string) (Admin, error) {
	var admin Admin
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return Admin{}, notFound(err)
	}
	return admin, nil
}

func (s *AdminStore) FindByID(ctx context.Context, id uint) (Admin, error) {
	var admin Admin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return Admin{}, notFound(err)
	}
	return admin, nil
}

// Create 以已哈希的口令创建管理员。
func (s *AdminStore) Create(ctx context.Context, username, passwordHash string) (Admin, error) {
	admin := Admin{Username: username, PasswordHash: passwordHash}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return Admin{}, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

// UpdatePassword 重置指定管理员的口令哈希。
func (s *AdminStore) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&Admin{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("update admin password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll 物理删除全部管理员。
func (s *AdminStore) DeleteAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Unscoped().
		Delete(&Admin{}).Error
	if err != nil {
		return fmt.Errorf("wipe admins: %w", err)
	}
	return nil
}
