package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mithrel/mudawwana/pkg/api"
)

func (s *sqliteStore) ReactionCounts(ctx context.Context, postID string) (api.ReactionCounts, error) {
	var rc api.ReactionCounts
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT
  COALESCE(SUM(CASE WHEN type = 'up' THEN 1 ELSE 0 END), 0),
  COALESCE(SUM(CASE WHEN type = 'down' THEN 1 ELSE 0 END), 0)
FROM reactions WHERE post_id = ?`, postID).Scan(&rc.Up, &rc.Down)
	if err != nil {
		return api.ReactionCounts{}, err
	}
	rc.Net = rc.Up - rc.Down
	return rc, nil
}

// UserReaction returns the reader's reaction, or "" when there is none.
func (s *sqliteStore) UserReaction(ctx context.Context, postID, readerID string) (api.ReactionType, error) {
	var typ string
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT type FROM reactions WHERE post_id = ? AND reader_id = ?`, postID, readerID).Scan(&typ)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return api.ReactionType(typ), nil
}

// SetReaction inserts the reader's reaction or switches it to typ.
func (s *sqliteStore) SetReaction(ctx context.Context, postID, readerID string, typ api.ReactionType) error {
	if _, ok := api.ParseReaction(string(typ)); !ok || readerID == "" {
		return fmt.Errorf("%w: reaction must be up or down from a known reader", ErrInvalid)
	}
	now := time.Now().UTC()
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO reactions(post_id, reader_id, type, created_at, updated_at) VALUES(?,?,?,?,?)
ON CONFLICT(post_id, reader_id) DO UPDATE SET type = excluded.type, updated_at = excluded.updated_at`,
		postID, readerID, string(typ), now, now)
	if isForeignKey(err) {
		return ErrNotFound
	}
	return err
}

// RemoveReaction deletes the reader's reaction; removing nothing is not an error.
func (s *sqliteStore) RemoveReaction(ctx context.Context, postID, readerID string) error {
	_, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM reactions WHERE post_id = ? AND reader_id = ?`, postID, readerID)
	return err
}
