package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/models"
)

// AccountRepository defines the interface for monitored-account data operations
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.MonitoredAccount) error
	GetAccountByID(ctx context.Context, id string) (*models.MonitoredAccount, error)
	ListAccountsByUser(ctx context.Context, userID string) ([]models.MonitoredAccount, error)
	ListActiveAccounts(ctx context.Context) ([]models.MonitoredAccount, error)
	SetAccountActive(ctx context.Context, id string, active bool) error
	UpdateWatermark(ctx context.Context, id string, checkedAt time.Time, lastTweetID string) error
	DeleteAccount(ctx context.Context, id string) error
}

// GormAccountRepository implements AccountRepository on the relational store
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// CreateAccount registers a Twitter username for monitoring
func (r *GormAccountRepository) CreateAccount(ctx context.Context, account *models.MonitoredAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(account).Error
}

// GetAccountByID retrieves a monitored account by ID
func (r *GormAccountRepository) GetAccountByID(ctx context.Context, id string) (*models.MonitoredAccount, error) {
	var account models.MonitoredAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccountsByUser retrieves a user's monitored accounts, newest first
func (r *GormAccountRepository) ListAccountsByUser(ctx context.Context, userID string) ([]models.MonitoredAccount, error) {
	var accounts []models.MonitoredAccount
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&accounts).Error
	return accounts, err
}

// ListActiveAccounts retrieves every account with monitoring enabled,
// across all users (used by the background monitoring pass)
func (r *GormAccountRepository) ListActiveAccounts(ctx context.Context) ([]models.MonitoredAccount, error) {
	var accounts []models.MonitoredAccount
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&accounts).Error
	return accounts, err
}

// SetAccountActive toggles monitoring for an account
func (r *GormAccountRepository) SetAccountActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.MonitoredAccount{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateWatermark records a completed polling pass: the last-checked
// time and the most recent tweet id seen for the account
func (r *GormAccountRepository) UpdateWatermark(ctx context.Context, id string, checkedAt time.Time, lastTweetID string) error {
	return r.db.WithContext(ctx).
		Model(&models.MonitoredAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_checked_at": checkedAt,
			"last_tweet_id":   lastTweetID,
		}).Error
}

// DeleteAccount removes a monitored account. Its crosspost logs are kept.
func (r *GormAccountRepository) DeleteAccount(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.MonitoredAccount{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
