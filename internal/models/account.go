package models

import "time"

// MonitoredAccount is a Twitter username a user wants watched. The
// monitoring pass advances the watermark fields (LastCheckedAt,
// LastTweetID); the owning user toggles IsActive or deletes the row.
type MonitoredAccount struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string     `json:"user_id" gorm:"type:varchar(36);index;not null"`
	TwitterUsername string     `json:"twitter_username" gorm:"index;not null"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	LastCheckedAt   *time.Time `json:"last_checked_at,omitempty"`
	LastTweetID     string     `json:"last_tweet_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (MonitoredAccount) TableName() string { return "monitored_accounts" }

// CreateAccountRequest defines the request body for registering a
// Twitter username to monitor
type CreateAccountRequest struct {
	TwitterUsername string `json:"twitter_username" validate:"required,min=1,max=15"`
}

// UpdateAccountRequest toggles monitoring for an account
type UpdateAccountRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
