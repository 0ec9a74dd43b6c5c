package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "anara-skills/registrar/internal/models/gorm"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type RegistrantRepository struct {
	db *gorm.DB
}

func NewRegistrantRepository(db *gorm.DB) *RegistrantRepository {
	return &RegistrantRepository{db: db}
}

// DB exposes the handle so callers can open their own transactions.
func (r *RegistrantRepository) DB() *gorm.DB { return r.db }

func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where(query, args...).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch record: %w", err)
	}
	return &out, nil
}

func exists[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (bool, error) {
	var count int64
	var model T
	if err := db.WithContext(ctx).Model(&model).Where(query, args...).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count records: %w", err)
	}
	return count > 0, nil
}

// CandidateContactTaken reports whether email or phone already belongs to a candidate.
func (r *RegistrantRepository) CandidateContactTaken(ctx context.Context, email, phone string) (bool, error) {
	return exists[gormModels.Candidate](ctx, r.db, "email = ? OR phone = ?", email, phone)
}

// VolunteerContactTaken reports whether email or phone already belongs to a volunteer.
func (r *RegistrantRepository) VolunteerContactTaken(ctx context.Context, email, phone string) (bool, error) {
	return exists[gormModels.Volunteer](ctx, r.db, "email = ? OR phone = ?", email, phone)
}

func (r *RegistrantRepository) CandidateEmailExists(ctx context.Context, email string) (bool, error) {
	return exists[gormModels.Candidate](ctx, r.db, "email = ?", email)
}

func (r *RegistrantRepository) VolunteerEmailExists(ctx context.Context, email string) (bool, error) {
	return exists[gormModels.Volunteer](ctx, r.db, "email = ?", email)
}

func (r *RegistrantRepository) FindVolunteerByRegNumber(ctx context.Context, regNumber string) (*gormModels.Volunteer, error) {
	return findOne[gormModels.Volunteer](ctx, r.db, "reg_number = ?", regNumber)
}

func (r *RegistrantRepository) FindCandidateByRegNumber(ctx context.Context, regNumber string) (*gormModels.Candidate, error) {
	return findOne[gormModels.Candidate](ctx, r.db, "reg_number = ?", regNumber)
}

func (r *RegistrantRepository) FindVolunteerByID(ctx context.Context, id string) (*gormModels.Volunteer, error) {
	return findOne[gormModels.Volunteer](ctx, r.db, "id = ?", id)
}

func (r *RegistrantRepository) FindCandidateByID(ctx context.Context, id string) (*gormModels.Candidate, error) {
	return findOne[gormModels.Candidate](ctx, r.db, "id = ?", id)
}

func (r *RegistrantRepository) FindVolunteerByEmail(ctx context.Context, email string) (*gormModels.Volunteer, error) {
	return findOne[gormModels.Volunteer](ctx, r.db, "email = ?", email)
}

func (r *RegistrantRepository) FindCandidateByEmail(ctx context.Context, email string) (*gormModels.Candidate, error) {
	return findOne[gormModels.Candidate](ctx, r.db, "email = ?", email)
}

func (r *RegistrantRepository) FindVolunteerByResetToken(ctx context.Context, tokenHash string) (*gormModels.Volunteer, error) {
	return findOne[gormModels.Volunteer](ctx, r.db, "reset_password_token = ?", tokenHash)
}

func (r *RegistrantRepository) FindCandidateByResetToken(ctx context.Context, tokenHash string) (*gormModels.Candidate, error) {
	return findOne[gormModels.Candidate](ctx, r.db, "reset_password_token = ?", tokenHash)
}

func (r *RegistrantRepository) ListVolunteers(ctx context.Context) ([]gormModels.Volunteer, error) {
	var out []gormModels.Volunteer
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list volunteers: %w", err)
	}
	return out, nil
}

func (r *RegistrantRepository) ListCandidates(ctx context.Context) ([]gormModels.Candidate, error) {
	var out []gormModels.Candidate
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return out, nil
}

func (r *RegistrantRepository) CandidatesOfVolunteer(ctx context.Context, volunteerRegNumber string) ([]gormModels.Candidate, error) {
	var out []gormModels.Candidate
	err := r.db.WithContext(ctx).
		Where("volunteer_reg_number = ?", volunteerRegNumber).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates of %s: %w", volunteerRegNumber, err)
	}
	return out, nil
}

// ToggleBlocked flips is_blocked for the record with regNumber and returns the new value.
func (r *RegistrantRepository) ToggleBlocked(ctx context.Context, model interface{}, regNumber string) (bool, error) {
	var blocked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []bool
		if err := tx.Model(model).Where("reg_number = ?", regNumber).Pluck("is_blocked", &current).Error; err != nil {
			return err
		}
		if len(current) == 0 {
			return ErrNotFound
		}
		blocked = !current[0]
		return tx.Model(model).Where("reg_number = ?", regNumber).Update("is_blocked", blocked).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle block for %s: %w", regNumber, err)
	}
	return blocked, nil
}

// SetResetToken stores the hashed reset token and its expiry for the record with id.
func (r *RegistrantRepository) SetResetToken(ctx context.Context, model interface{}, id string, tokenHash *string, expire *time.Time) error {
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_password_token":  tokenHash,
		"reset_password_expire": expire,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// UpdatePassword replaces the hash and clears any outstanding reset token.
func (r *RegistrantRepository) UpdatePassword(ctx context.Context, model interface{}, id, passwordHash string) error {
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":         passwordHash,
		"reset_password_token":  nil,
		"reset_password_expire": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
