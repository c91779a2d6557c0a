package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// SongPublished is emitted after a track has been delivered to a channel.
type SongPublished struct {
	eventID    uuid.UUID
	songID     int64
	ownerID    int64
	channelID  int64
	title      string
	fileName   string
	occurredAt time.Time
}

func NewSongPublished(s *Song) *SongPublished {
	return &SongPublished{
		eventID:    uuid.New(),
		songID:     s.ID,
		ownerID:    s.OwnerID,
		channelID:  s.ChannelID,
		title:      s.Title,
		fileName:   s.FileName,
		occurredAt: s.PublishedAt,
	}
}

func (e *SongPublished) EventID() uuid.UUID    { return e.eventID }
func (e *SongPublished) EventType() string     { return "SongPublished" }
func (e *SongPublished) AggregateID() string   { return strconv.FormatInt(e.songID, 10) }
func (e *SongPublished) OccurredAt() time.Time { return e.occurredAt }

func (e *SongPublished) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		SongID     int64     `json:"song_id"`
		OwnerID    int64     `json:"owner_id"`
		ChannelID  int64     `json:"channel_id"`
		Title      string    `json:"title"`
		FileName   string    `json:"file_name"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		SongID:     e.songID,
		OwnerID:    e.ownerID,
		ChannelID:  e.channelID,
		Title:      e.title,
		FileName:   e.fileName,
		OccurredAt: e.occurredAt,
	})
}
