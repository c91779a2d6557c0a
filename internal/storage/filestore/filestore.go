// Package filestore keeps the whole configuration in one JSON document on
// disk. The document is rewritten atomically on every mutation; fine for the
// handful of channels a single bot instance manages.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

type document struct {
	NextChannelID int64            `json:"next_channel_id"`
	NextSongID    int64            `json:"next_song_id"`
	Channels      []models.Channel `json:"channels"`
	Songs         []models.Song    `json:"songs"`
}

// Store implements repository.ChannelStore and repository.SongLog over a
// single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: document{NextChannelID: 1, NextSongID: 1}}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run; the file appears on the first write.
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("filestore open: %w", err)
	}

	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, fmt.Errorf("filestore parse %s: %w", path, err)
	}
	if s.doc.NextChannelID == 0 {
		s.doc.NextChannelID = 1
	}
	if s.doc.NextSongID == 0 {
		s.doc.NextSongID = 1
	}
	return s, nil
}

func (s *Store) Upsert(ctx context.Context, owner int64, channelID, name, caption string) (*models.Channel, error) {
	if owner == 0 || channelID == "" {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i := range s.doc.Channels {
		ch := &s.doc.Channels[i]
		if ch.OwnerID == owner && ch.ChannelID == channelID {
			if name != "" {
				ch.Name = name
			}
			if caption != "" {
				ch.Caption = caption
			}
			ch.UpdatedAt = now
			if err := s.save(); err != nil {
				return nil, err
			}
			cp := *ch
			return &cp, nil
		}
	}

	ch := models.Channel{
		ID:        s.doc.NextChannelID,
		OwnerID:   owner,
		ChannelID: channelID,
		Name:      name,
		Caption:   caption,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.doc.NextChannelID++
	s.doc.Channels = append(s.doc.Channels, ch)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *Store) ListByOwner(ctx context.Context, owner int64) ([]models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Channel
	for _, ch := range s.doc.Channels {
		if ch.OwnerID == owner {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.doc.Channels {
		if ch.ID == id {
			cp := ch
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) SetName(ctx context.Context, id int64, name string) error {
	return s.update(ctx, id, func(ch *models.Channel) { ch.Name = name })
}

func (s *Store) SetCaption(ctx context.Context, id int64, caption string) error {
	return s.update(ctx, id, func(ch *models.Channel) { ch.Caption = caption })
}

func (s *Store) SetLogo(ctx context.Context, id int64, logo []byte) error {
	cp := make([]byte, len(logo))
	copy(cp, logo)
	return s.update(ctx, id, func(ch *models.Channel) { ch.Logo = cp })
}

func (s *Store) SetDefault(ctx context.Context, owner, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.doc.Channels {
		ch := &s.doc.Channels[i]
		if ch.ID == id && ch.OwnerID == owner {
			found = true
		}
	}
	if !found {
		return models.ErrNotFound
	}

	for i := range s.doc.Channels {
		ch := &s.doc.Channels[i]
		if ch.OwnerID == owner {
			ch.IsDefault = ch.ID == id
		}
	}
	return s.save()
}

func (s *Store) GetDefault(ctx context.Context, owner int64) (*models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.doc.Channels {
		if ch.OwnerID == owner && ch.IsDefault {
			cp := ch
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) Record(ctx context.Context, song *models.Song) (*models.Song, error) {
	if song == nil || song.OwnerID == 0 {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *song
	cp.ID = s.doc.NextSongID
	s.doc.NextSongID++
	s.doc.Songs = append(s.doc.Songs, cp)
	if err := s.save(); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *Store) History(ctx context.Context, owner int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Song
	for _, song := range s.doc.Songs {
		if song.OwnerID == owner {
			out = append(out, song)
		}
	}
	return out, nil
}

func (s *Store) update(ctx context.Context, id int64, fn func(*models.Channel)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Channels {
		ch := &s.doc.Channels[i]
		if ch.ID == id {
			fn(ch)
			ch.UpdatedAt = time.Now().UTC()
			return s.save()
		}
	}
	return models.ErrNotFound
}

// save must be called with the mutex held.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore marshal: %w", err)
	}
	if err := renameio.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("filestore write %s: %w", s.path, err)
	}
	return nil
}
