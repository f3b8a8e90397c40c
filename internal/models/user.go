package models

import "time"

// User is an authenticated end user. The row is created on the first
// successful Privy login and never deleted in-band.
type User struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PrivyUserID     string    `json:"privy_user_id" gorm:"uniqueIndex;not null"`
	Email           string    `json:"email,omitempty"`
	TwitterUsername string    `json:"twitter_username,omitempty"`
	FarcasterFID    int64     `json:"farcaster_fid,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// LoginRequest carries the Privy access token issued to the client
type LoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}
