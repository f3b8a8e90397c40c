package models

import "time"

// CrosspostStatus is the closed set of states for a CrosspostLog.
// A row is created pending and moves exactly once to completed or
// failed; no transition leaves a terminal state.
type CrosspostStatus string

const (
	StatusPending   CrosspostStatus = "pending"
	StatusCompleted CrosspostStatus = "completed"
	StatusFailed    CrosspostStatus = "failed"
)

// CrosspostLog is one tweet queued (and later attempted) for
// republishing to Farcaster. TweetID is unique system-wide so a tweet
// is queued at most once, even across overlapping pipeline runs.
type CrosspostLog struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID             string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	MonitoredAccountID string          `json:"monitored_account_id" gorm:"type:varchar(36);index;not null"`
	TweetID            string          `json:"tweet_id" gorm:"uniqueIndex;not null"`
	TweetText          string          `json:"tweet_text"`
	TweetURL           string          `json:"tweet_url"`
	FarcasterCastHash  string          `json:"farcaster_cast_hash,omitempty" gorm:"column:farcaster_cast_hash"`
	Status             CrosspostStatus `json:"status" gorm:"index;default:pending"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	ProcessedAt        *time.Time      `json:"processed_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (CrosspostLog) TableName() string { return "crosspost_logs" }
