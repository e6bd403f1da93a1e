package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/utils"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// GetOrCreate returns the user's token, creating one when missing. The
// boolean reports whether a token was created.
func (r *GormTokenRepository) GetOrCreate(ctx context.Context, userID uint64) (*models.Token, bool, error) {
	var token models.Token
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	key, err := utils.GenerateTokenKey()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate token: %w", err)
	}

	token = models.Token{Key: key, UserID: userID}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		return nil, false, err
	}
	return &token, true, nil
}

// FindByKey finds a token by its key
func (r *GormTokenRepository) FindByKey(ctx context.Context, key string) (*models.Token, error) {
	var token models.Token
	if err := r.db.WithContext(ctx).Where(&models.Token{Key: key}).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteByUserID removes the user's token
func (r *GormTokenRepository) DeleteByUserID(ctx context.Context, userID uint64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Token{}).Error
}
