package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stayora/stayora-auth/internal/auth"
	"github.com/stayora/stayora-auth/internal/database/models"
	"gorm.io/gorm"
)

// UserStore is the gorm-backed identity store.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// TenantStore persists tenant business profiles.
type TenantStore struct {
	db *gorm.DB
}

func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	return s.db.WithContext(ctx).Create(tenant).Error
}

// VerificationTokenStore is the gorm-backed store for email-verification
// tokens.
type VerificationTokenStore struct {
	db *gorm.DB
}

func NewVerificationTokenStore(db *gorm.DB) *VerificationTokenStore {
	return &VerificationTokenStore{db: db}
}

func (s *VerificationTokenStore) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	rec := models.VerificationToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *VerificationTokenStore) Rotate(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.VerificationToken{}).
			Where("user_id = ? AND used = ?", userID, false).
			Update("used", true).Error
		if err != nil {
			return err
		}

		rec := models.VerificationToken{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&rec).Error
	})
}

func (s *VerificationTokenStore) FindValid(ctx context.Context, token string) (*auth.TokenRecord, error) {
	var rec models.VerificationToken
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &auth.TokenRecord{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		Used:      rec.Used,
		User:      rec.User,
	}, nil
}

func (s *VerificationTokenStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.VerificationToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// ResetTokenStore is the gorm-backed store for password-reset tokens. Same
// lifecycle as VerificationTokenStore, separate table.
type ResetTokenStore struct {
	db *gorm.DB
}

func NewResetTokenStore(db *gorm.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

func (s *ResetTokenStore) Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	rec := models.ResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *ResetTokenStore) Rotate(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.ResetToken{}).
			Where("user_id = ? AND used = ?", userID, false).
			Update("used", true).Error
		if err != nil {
			return err
		}

		rec := models.ResetToken{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&rec).Error
	})
}

func (s *ResetTokenStore) FindValid(ctx context.Context, token string) (*auth.TokenRecord, error) {
	var rec models.ResetToken
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &auth.TokenRecord{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Token:     rec.Token,
		ExpiresAt: rec.ExpiresAt,
		Used:      rec.Used,
		User:      rec.User,
	}, nil
}

func (s *ResetTokenStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.ResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}

// Compile-time interface satisfaction checks
var (
	_ auth.IdentityStore = (*UserStore)(nil)
	_ auth.TenantStore   = (*TenantStore)(nil)
	_ auth.TokenStore    = (*VerificationTokenStore)(nil)
	_ auth.TokenStore    = (*ResetTokenStore)(nil)
)
