package models

import "time"

// Song is one append-only audit row: a track that was published into a channel.
type Song struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	ChannelID   int64     `db:"channel_db_id" json:"channel_id"`
	Title       string    `db:"title" json:"title"`
	FileName    string    `db:"file_name" json:"file_name"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}
