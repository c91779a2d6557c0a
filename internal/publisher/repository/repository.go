package repository

import (
	"context"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

// ChannelStore persists per-owner channel configurations. Implementations:
// sqlstore (postgres or sqlite), filestore (flat JSON document), and the
// in-memory store below for tests.
type ChannelStore interface {
	// Upsert inserts the (owner, channelID) record or updates it in place.
	// Empty name/caption leave the stored values untouched.
	Upsert(ctx context.Context, owner int64, channelID, name, caption string) (*models.Channel, error)
	ListByOwner(ctx context.Context, owner int64) ([]models.Channel, error)
	GetByID(ctx context.Context, id int64) (*models.Channel, error)
	SetName(ctx context.Context, id int64, name string) error
	SetCaption(ctx context.Context, id int64, caption string) error
	SetLogo(ctx context.Context, id int64, logo []byte) error
	// SetDefault flips the default flag to the given record, clearing it on
	// every other record of the same owner.
	SetDefault(ctx context.Context, owner, id int64) error
	GetDefault(ctx context.Context, owner int64) (*models.Channel, error)
}

// SongLog is the append-only publish history. No update or delete.
type SongLog interface {
	Record(ctx context.Context, s *models.Song) (*models.Song, error)
	History(ctx context.Context, owner int64) ([]models.Song, error)
}
