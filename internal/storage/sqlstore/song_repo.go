package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cafetunes/publisher/internal/publisher/models"
)

// SongRepo appends publish-history rows. When an OutboxRepo is attached the
// SongPublished event lands in the outbox table inside the same transaction.
type SongRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewSongRepo(db *sqlx.DB, outbox *OutboxRepo) *SongRepo {
	return &SongRepo{db: db, outbox: outbox}
}

func (r *SongRepo) Record(ctx context.Context, s *models.Song) (*models.Song, error) {
	if s == nil || s.OwnerID == 0 {
		return nil, models.ErrInvalidArgument
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cp := *s
	cp.ID, err = r.insert(ctx, tx, &cp)
	if err != nil {
		return nil, err
	}

	if r.outbox != nil {
		if err := r.outbox.Add(ctx, tx, models.NewSongPublished(&cp)); err != nil {
			return nil, fmt.Errorf("add outbox: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &cp, nil
}

func (r *SongRepo) History(ctx context.Context, owner int64) ([]models.Song, error) {
	const q = `
		SELECT id, owner_id, channel_db_id, title, file_name, published_at
		FROM songs
		WHERE owner_id = ?
		ORDER BY id
	`

	var out []models.Song
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), owner); err != nil {
		return nil, fmt.Errorf("song history: %w", err)
	}
	return out, nil
}

func (r *SongRepo) insert(ctx context.Context, tx *sqlx.Tx, s *models.Song) (int64, error) {
	const q = `
		INSERT INTO songs (owner_id, channel_db_id, title, file_name, published_at)
		VALUES (?, ?, ?, ?, ?)
	`

	// pgx does not support LastInsertId, sqlite does not like RETURNING
	// through every sqlx path; branch on the driver.
	if r.db.DriverName() == "pgx" {
		var id int64
		if err := tx.GetContext(ctx, &id, r.db.Rebind(q+` RETURNING id`),
			s.OwnerID, s.ChannelID, s.Title, s.FileName, s.PublishedAt); err != nil {
			return 0, fmt.Errorf("song insert: %w", err)
		}
		return id, nil
	}

	res, err := tx.ExecContext(ctx, q, s.OwnerID, s.ChannelID, s.Title, s.FileName, s.PublishedAt)
	if err != nil {
		return 0, fmt.Errorf("song insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("song insert id: %w", err)
	}
	return id, nil
}
