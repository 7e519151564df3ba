package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/mudawwana/pkg/api"
)

// ListComments returns the comments of a post, oldest first.
func (s *sqliteStore) ListComments(ctx context.Context, postID string) ([]api.Comment, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT id, post_id, name, email, body, reader_id, created_at
FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Comment{}
	for rows.Next() {
		var c api.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Name, &c.Email, &c.Body, &c.ReaderID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) AddComment(ctx context.Context, c api.Comment) (api.Comment, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Body = strings.TrimSpace(c.Body)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.PostID == "" || c.Name == "" || c.Body == "" {
		return api.Comment{}, fmt.Errorf("%w: comment needs a post, a name and a body", ErrInvalid)
	}
	if c.ID == "" {
		c.ID = api.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	_, err := s.conn(ctx).ExecContext(ctx, `INSERT INTO comments(id, post_id, name, email, body, reader_id, created_at) VALUES(?,?,?,?,?,?,?)`,
		c.ID, c.PostID, c.Name, c.Email, c.Body, c.ReaderID, c.CreatedAt)
	if isForeignKey(err) {
		return api.Comment{}, ErrNotFound
	}
	if err != nil {
		return api.Comment{}, err
	}
	return c, nil
}

// DeleteComment removes a comment written by readerID. A comment owned by
// someone else is reported as not found.
func (s *sqliteStore) DeleteComment(ctx context.Context, id, readerID string) error {
	if readerID == "" {
		return ErrNotFound
	}
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM comments WHERE id = ? AND reader_id = ?`, id, readerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
