package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

// MemoryStore implements ChannelStore and SongLog in process memory.
// Used by tests and as the reference semantics for the durable stores.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	channels map[int64]*models.Channel
	songs    []models.Song
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		channels: make(map[int64]*models.Channel),
	}
}

func (r *MemoryStore) Upsert(ctx context.Context, owner int64, channelID, name, caption string) (*models.Channel, error) {
	if owner == 0 || channelID == "" {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, ch := range r.channels {
		if ch.OwnerID == owner && ch.ChannelID == channelID {
			if name != "" {
				ch.Name = name
			}
			if caption != "" {
				ch.Caption = caption
			}
			ch.UpdatedAt = now
			cp := *ch
			return &cp, nil
		}
	}

	ch := &models.Channel{
		ID:        r.nextID,
		OwnerID:   owner,
		ChannelID: channelID,
		Name:      name,
		Caption:   caption,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.channels[ch.ID] = ch

	// Копия, чтобы внешняя сторона не могла мутировать хранимый объект
	cp := *ch
	return &cp, nil
}

func (r *MemoryStore) ListByOwner(ctx context.Context, owner int64) ([]models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Channel
	for _, ch := range r.channels {
		if ch.OwnerID == owner {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryStore) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (r *MemoryStore) SetName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, func(ch *models.Channel) { ch.Name = name })
}

func (r *MemoryStore) SetCaption(ctx context.Context, id int64, caption string) error {
	return r.update(ctx, id, func(ch *models.Channel) { ch.Caption = caption })
}

func (r *MemoryStore) SetLogo(ctx context.Context, id int64, logo []byte) error {
	cp := make([]byte, len(logo))
	copy(cp, logo)
	return r.update(ctx, id, func(ch *models.Channel) { ch.Logo = cp })
}

func (r *MemoryStore) SetDefault(ctx context.Context, owner, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.channels[id]
	if !ok || target.OwnerID != owner {
		return models.ErrNotFound
	}
	for _, ch := range r.channels {
		if ch.OwnerID == owner {
			ch.IsDefault = ch.ID == id
		}
	}
	return nil
}

func (r *MemoryStore) GetDefault(ctx context.Context, owner int64) (*models.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.channels {
		if ch.OwnerID == owner && ch.IsDefault {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryStore) Record(ctx context.Context, s *models.Song) (*models.Song, error) {
	if s == nil || s.OwnerID == 0 {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *s
	cp.ID = int64(len(r.songs) + 1)
	r.songs = append(r.songs, cp)
	out := cp
	return &out, nil
}

func (r *MemoryStore) History(ctx context.Context, owner int64) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Song
	for _, s := range r.songs {
		if s.OwnerID == owner {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *MemoryStore) update(ctx context.Context, id int64, fn func(*models.Channel)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.channels[id]
	if !ok {
		return models.ErrNotFound
	}
	fn(ch)
	ch.UpdatedAt = time.Now()
	return nil
}
