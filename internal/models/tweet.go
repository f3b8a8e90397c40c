package models

import "time"

// Tweet is a single post as returned by the source platform reader,
// freshest-first within a fetch.
type Tweet struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	IsRetweet bool      `json:"is_retweet,omitempty"`
	IsReply   bool      `json:"is_reply,omitempty"`
}
