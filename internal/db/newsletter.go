package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mithrel/mudawwana/pkg/api"
)

const (
	msgAlreadySubscribed = "This email is already subscribed"
	msgResubscribed      = "Successfully resubscribed to newsletter"
	msgSubscribed        = "Successfully subscribed to newsletter"
	msgUnsubscribed      = "Successfully unsubscribed from newsletter"
)

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if at := strings.IndexByte(email, '@'); at <= 0 || at == len(email)-1 {
		return "", fmt.Errorf("%w: email %q", ErrInvalid, email)
	}
	return email, nil
}

// Subscribe adds email to the list. An active subscriber is reported as already
// subscribed, an inactive one is reactivated.
func (s *sqliteStore) Subscribe(ctx context.Context, email string) (api.SubscribeResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return api.SubscribeResult{}, err
	}
	var res api.SubscribeResult
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		q := s.conn(ctx)
		now := time.Now().UTC()
		var id string
		var active bool
		err := q.QueryRowContext(ctx, `SELECT id, is_active FROM newsletter_subscribers WHERE email = ?`, email).Scan(&id, &active)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := q.ExecContext(ctx, `INSERT INTO newsletter_subscribers(id, email, subscribed_at, is_active) VALUES(?,?,?,1)`,
				api.NewID(), email, now); err != nil {
				return err
			}
			res = api.SubscribeResult{Success: true, Message: msgSubscribed}
		case err != nil:
			return err
		case active:
			res = api.SubscribeResult{Success: false, Message: msgAlreadySubscribed, AlreadySubscribed: true}
		default:
			if _, err := q.ExecContext(ctx, `UPDATE newsletter_subscribers SET is_active = 1, subscribed_at = ? WHERE id = ?`, now, id); err != nil {
				return err
			}
			res = api.SubscribeResult{Success: true, Message: msgResubscribed}
		}
		return nil
	})
	if err != nil {
		return api.SubscribeResult{}, err
	}
	return res, nil
}

// Unsubscribe deactivates email. Unknown addresses succeed silently.
func (s *sqliteStore) Unsubscribe(ctx context.Context, email string) (api.SubscribeResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return api.SubscribeResult{}, err
	}
	if _, err := s.conn(ctx).ExecContext(ctx, `UPDATE newsletter_subscribers SET is_active = 0 WHERE email = ?`, email); err != nil {
		return api.SubscribeResult{}, err
	}
	return api.SubscribeResult{Success: true, Message: msgUnsubscribed}, nil
}

func (s *sqliteStore) ListSubscribers(ctx context.Context, activeOnly bool) ([]api.Subscriber, error) {
	q := `SELECT id, email, subscribed_at, is_active FROM newsletter_subscribers`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY subscribed_at ASC, email ASC`
	rows, err := s.conn(ctx).QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Subscriber{}
	for rows.Next() {
		var sub api.Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.Active); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
