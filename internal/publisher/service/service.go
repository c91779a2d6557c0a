package service

import (
	"context"
	"time"

	"github.com/cafetunes/publisher/internal/publisher/models"
	"github.com/cafetunes/publisher/internal/publisher/repository"
)

// Service owns the invariants around channel configuration: argument
// validation, owner-equals-sender checks, publish-history timestamps.
// Storage details stay behind the repository interfaces.
type Service struct {
	channels repository.ChannelStore
	songs    repository.SongLog
	clock    func() time.Time
}

func New(channels repository.ChannelStore, songs repository.SongLog) *Service {
	return &Service{
		channels: channels,
		songs:    songs,
		clock:    time.Now,
	}
}

// AddChannel registers (or refreshes) a destination channel for the owner.
func (s *Service) AddChannel(ctx context.Context, owner int64, channelID, name string) (*models.Channel, error) {
	if owner == 0 || channelID == "" {
		return nil, models.ErrInvalidArgument
	}
	return s.channels.Upsert(ctx, owner, channelID, name, "")
}

func (s *Service) Channels(ctx context.Context, owner int64) ([]models.Channel, error) {
	return s.channels.ListByOwner(ctx, owner)
}

// ChannelOf loads a channel record and verifies the caller owns it.
func (s *Service) ChannelOf(ctx context.Context, owner, id int64) (*models.Channel, error) {
	if id == 0 {
		return nil, models.ErrInvalidArgument
	}
	ch, err := s.channels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.OwnerID != owner {
		return nil, models.ErrNotOwner
	}
	return ch, nil
}

func (s *Service) Rename(ctx context.Context, owner, id int64, name string) error {
	if name == "" {
		return models.ErrInvalidArgument
	}
	if _, err := s.ChannelOf(ctx, owner, id); err != nil {
		return err
	}
	return s.channels.SetName(ctx, id, name)
}

func (s *Service) SetCaption(ctx context.Context, owner, id int64, caption string) error {
	if caption == "" {
		return models.ErrInvalidArgument
	}
	if _, err := s.ChannelOf(ctx, owner, id); err != nil {
		return err
	}
	return s.channels.SetCaption(ctx, id, caption)
}

func (s *Service) SetLogo(ctx context.Context, owner, id int64, jpeg []byte) error {
	if len(jpeg) == 0 {
		return models.ErrInvalidArgument
	}
	if _, err := s.ChannelOf(ctx, owner, id); err != nil {
		return err
	}
	return s.channels.SetLogo(ctx, id, jpeg)
}

func (s *Service) SetDefault(ctx context.Context, owner, id int64) error {
	if _, err := s.ChannelOf(ctx, owner, id); err != nil {
		return err
	}
	return s.channels.SetDefault(ctx, owner, id)
}

func (s *Service) DefaultChannel(ctx context.Context, owner int64) (*models.Channel, error) {
	return s.channels.GetDefault(ctx, owner)
}

// RecordPublished appends a history row for a delivered track. The store
// takes care of emitting the outbox event where that is wired up.
func (s *Service) RecordPublished(ctx context.Context, owner, channelID int64, title, fileName string) (*models.Song, error) {
	if owner == 0 || channelID == 0 {
		return nil, models.ErrInvalidArgument
	}
	return s.songs.Record(ctx, &models.Song{
		OwnerID:     owner,
		ChannelID:   channelID,
		Title:       title,
		FileName:    fileName,
		PublishedAt: s.clock(),
	})
}

func (s *Service) History(ctx context.Context, owner int64) ([]models.Song, error) {
	return s.songs.History(ctx, owner)
}
