package models

import "time"

// Channel is one destination a user publishes audio into. ChannelID is the
// Telegram target as the user typed it: "@name" or a "-100..." numeric chat id.
type Channel struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	ChannelID string    `db:"channel_id" json:"channel_id"`
	Name      string    `db:"name" json:"name"`
	Caption   string    `db:"caption" json:"caption"`
	Logo      []byte    `db:"logo" json:"logo,omitempty"`
	IsDefault bool      `db:"is_default" json:"is_default"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
