package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "anara-skills/registrar/internal/models/gorm"

	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("duplicate record")

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, admin *gormModels.Admin) error {
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*gormModels.Admin, error) {
	return findOne[gormModels.Admin](ctx, r.db, "email = ?", email)
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*gormModels.Admin, error) {
	return findOne[gormModels.Admin](ctx, r.db, "id = ?", id)
}

func (r *AdminRepository) FindByResetToken(ctx context.Context, tokenHash string) (*gormModels.Admin, error) {
	return findOne[gormModels.Admin](ctx, r.db, "reset_password_token = ?", tokenHash)
}

func (r *AdminRepository) SetResetToken(ctx context.Context, id string, tokenHash *string, expire *time.Time) error {
	err := r.db.WithContext(ctx).Model(&gormModels.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token":  tokenHash,
		"reset_password_expire": expire,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store admin reset token: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	err := r.db.WithContext(ctx).Model(&gormModels.Admin{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":         passwordHash,
		"reset_password_token":  nil,
		"reset_password_expire": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}
