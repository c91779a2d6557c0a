package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

type ChannelRepo struct {
	db *sqlx.DB
}

func NewChannelRepo(db *sqlx.DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

const channelColumns = `id, owner_id, channel_id, name, caption, logo, is_default, created_at, updated_at`

func (r *ChannelRepo) Upsert(ctx context.Context, owner int64, channelID, name, caption string) (*models.Channel, error) {
	if owner == 0 || channelID == "" {
		return nil, models.ErrInvalidArgument
	}

	now := time.Now().UTC()

	existing, err := r.getByTarget(ctx, owner, channelID)
	switch {
	case err == nil:
		// NULLIF keeps the stored value when the incoming one is empty;
		// works the same on sqlite and postgres.
		const q = `
			UPDATE channels
			SET name = COALESCE(NULLIF(?, ''), name),
			    caption = COALESCE(NULLIF(?, ''), caption),
			    updated_at = ?
			WHERE id = ?
		`
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), name, caption, now, existing.ID); err != nil {
			return nil, fmt.Errorf("channel update: %w", err)
		}
	case errors.Is(err, models.ErrNotFound):
		const q = `
			INSERT INTO channels (owner_id, channel_id, name, caption, is_default, created_at, updated_at)
			VALUES (?, ?, ?, ?, FALSE, ?, ?)
		`
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(q), owner, channelID, name, caption, now, now); err != nil {
			return nil, fmt.Errorf("channel insert: %w", err)
		}
	default:
		return nil, err
	}

	return r.getByTarget(ctx, owner, channelID)
}

func (r *ChannelRepo) ListByOwner(ctx context.Context, owner int64) ([]models.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE owner_id = ? ORDER BY id`

	var out []models.Channel
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), owner); err != nil {
		return nil, fmt.Errorf("channel list: %w", err)
	}
	return out, nil
}

func (r *ChannelRepo) GetByID(ctx context.Context, id int64) (*models.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE id = ?`

	var ch models.Channel
	if err := r.db.GetContext(ctx, &ch, r.db.Rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("channel get by id: %w", err)
	}
	return &ch, nil
}

func (r *ChannelRepo) SetName(ctx context.Context, id int64, name string) error {
	return r.updateField(ctx, id, `name`, name)
}

func (r *ChannelRepo) SetCaption(ctx context.Context, id int64, caption string) error {
	return r.updateField(ctx, id, `caption`, caption)
}

func (r *ChannelRepo) SetLogo(ctx context.Context, id int64, logo []byte) error {
	return r.updateField(ctx, id, `logo`, logo)
}

func (r *ChannelRepo) SetDefault(ctx context.Context, owner, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const clear = `UPDATE channels SET is_default = FALSE WHERE owner_id = ?`
	if _, err := tx.ExecContext(ctx, r.db.Rebind(clear), owner); err != nil {
		return fmt.Errorf("clear default: %w", err)
	}

	const set = `UPDATE channels SET is_default = TRUE WHERE id = ? AND owner_id = ?`
	res, err := tx.ExecContext(ctx, r.db.Rebind(set), id, owner)
	if err != nil {
		return fmt.Errorf("set default: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set default rows: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *ChannelRepo) GetDefault(ctx context.Context, owner int64) (*models.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE owner_id = ? AND is_default = TRUE`

	var ch models.Channel
	if err := r.db.GetContext(ctx, &ch, r.db.Rebind(q), owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("channel get default: %w", err)
	}
	return &ch, nil
}

func (r *ChannelRepo) getByTarget(ctx context.Context, owner int64, channelID string) (*models.Channel, error) {
	const q = `SELECT ` + channelColumns + ` FROM channels WHERE owner_id = ? AND channel_id = ?`

	var ch models.Channel
	if err := r.db.GetContext(ctx, &ch, r.db.Rebind(q), owner, channelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("channel get by target: %w", err)
	}
	return &ch, nil
}

func (r *ChannelRepo) updateField(ctx context.Context, id int64, column string, value any) error {
	q := `UPDATE channels SET ` + column + ` = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(q), value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("channel set %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("channel set %s rows: %w", column, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
