package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosspostx/backend/internal/models"
)

// CrosspostLogRepository defines the interface for crosspost log data operations
type CrosspostLogRepository interface {
	CreateLog(ctx context.Context, log *models.CrosspostLog) error
	ExistsForTweet(ctx context.Context, tweetID string) (bool, error)
	ListPending(ctx context.Context) ([]models.CrosspostLog, error)
	MarkCompleted(ctx context.Context, id, castHash string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id, errorMessage string, processedAt time.Time) error
	ListLogsByUser(ctx context.Context, userID string, limit int) ([]models.CrosspostLog, error)
}

// GormCrosspostLogRepository implements CrosspostLogRepository on the relational store
type GormCrosspostLogRepository struct {
	db *gorm.DB
}

// NewGormCrosspostLogRepository creates a new GormCrosspostLogRepository
func NewGormCrosspostLogRepository(db *gorm.DB) *GormCrosspostLogRepository {
	return &GormCrosspostLogRepository{db: db}
}

// CreateLog queues a tweet for crossposting. The unique index on
// tweet_id makes a duplicate insert fail with gorm.ErrDuplicatedKey,
// which callers treat as "already queued".
func (r *GormCrosspostLogRepository) CreateLog(ctx context.Context, log *models.CrosspostLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Status == "" {
		log.Status = models.StatusPending
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// ExistsForTweet reports whether any crosspost log exists for the tweet
func (r *GormCrosspostLogRepository) ExistsForTweet(ctx context.Context, tweetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CrosspostLog{}).
		Where("tweet_id = ?", tweetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPending retrieves every queued crosspost, oldest first
func (r *GormCrosspostLogRepository) ListPending(ctx context.Context) ([]models.CrosspostLog, error) {
	var logs []models.CrosspostLog
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// MarkCompleted moves a pending log to completed with the published
// cast hash. Rows already in a terminal state are never touched.
func (r *GormCrosspostLogRepository) MarkCompleted(ctx context.Context, id, castHash string, processedAt time.Time) error {
	return r.finalize(ctx, id, map[string]interface{}{
		"status":              models.StatusCompleted,
		"farcaster_cast_hash": castHash,
		"processed_at":        processedAt,
	})
}

// MarkFailed moves a pending log to failed with the publish error.
// Rows already in a terminal state are never touched.
func (r *GormCrosspostLogRepository) MarkFailed(ctx context.Context, id, errorMessage string, processedAt time.Time) error {
	return r.finalize(ctx, id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMessage,
		"processed_at":  processedAt,
	})
}

func (r *GormCrosspostLogRepository) finalize(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.CrosspostLog{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListLogsByUser retrieves a user's crosspost history, newest first
func (r *GormCrosspostLogRepository) ListLogsByUser(ctx context.Context, userID string, limit int) ([]models.CrosspostLog, error) {
	var logs []models.CrosspostLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
