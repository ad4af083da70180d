package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tally/container"
	"github.com/roach88/tally/digest"
)

// DigestInfo is a listing row: digest identity without the body.
type DigestInfo struct {
	ID        string
	Timestamp time.Time
}

// SaveDigest stores a serialized digest.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - digests are immutable,
// so a duplicate id means the body is already on disk.
//
// The serialized form is parsed first, both to extract the id and timestamp
// and to reject malformed input before it reaches the table.
func (s *Store) SaveDigest(ctx context.Context, serialized string) error {
	d, err := digest.Parse(serialized)
	if err != nil {
		return fmt.Errorf("save digest: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO digests (id, created_at, body)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		d.ID,
		d.Timestamp.UTC().Format(time.RFC3339Nano),
		serialized,
	)
	if err != nil {
		return fmt.Errorf("save digest %s: %w", d.ID, err)
	}

	return nil
}

// LoadDigest returns the serialized digest for an id, or "" when no digest
// with that id exists. The body comes back exactly as saved.
func (s *Store) LoadDigest(ctx context.Context, id string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM digests WHERE id = ?
	`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load digest %s: %w", id, err)
	}
	return body, nil
}

// ListDigests returns identity rows for every stored digest.
// Ordered by created_at ASC, id ASC COLLATE BINARY so repeated listings
// over the same data return identical results.
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListDigests(ctx context.Context) ([]DigestInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at FROM digests
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()

	infos := []DigestInfo{}
	for rows.Next() {
		var info DigestInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan digest row: %w", err)
		}
		info.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", info.ID, err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digests: %w", err)
	}

	return infos, nil
}

// Persister adapts the store to the container's persist callback. The store
// keeps the serialized form as-is and returns no override.
func (s *Store) Persister() container.PersistFunc {
	return func(ctx context.Context, serialized string) (string, error) {
		if err := s.SaveDigest(ctx, serialized); err != nil {
			return "", err
		}
		return "", nil
	}
}

// Fetcher adapts the store to the container's fetch callback. A missing id
// returns "", which makes the container fall back to its local digest list.
func (s *Store) Fetcher() container.FetchFunc {
	return func(ctx context.Context, digestID string) (string, error) {
		return s.LoadDigest(ctx, digestID)
	}
}
