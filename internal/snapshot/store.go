// Package snapshot persists boards as versioned JSON snapshots.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

var ErrNotFound = errors.New("snapshot not found")

// DBTX is the part of a pool or transaction the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const getLatest = `
SELECT version, document FROM board_snapshots
WHERE board_id = $1
ORDER BY version DESC
LIMIT 1`

const create = `
INSERT INTO board_snapshots (id, board_id, version, document)
VALUES ($1, $2, $3, $4)`

type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Latest loads the newest snapshot of a board.
func (s *Store) Latest(ctx context.Context, boardID string) (*document.Board, error) {
	var (
		version int32
		data    []byte
	)
	err := s.db.QueryRow(ctx, getLatest, boardID).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}

	b, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	b.Version = int(version)
	return b, nil
}

// Save writes b as the next version of its board and returns that version.
func (s *Store) Save(ctx context.Context, b *document.Board) (int, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return 0, fmt.Errorf("marshal board: %w", err)
	}

	var current int32
	err = s.db.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM board_snapshots WHERE board_id = $1`, b.ID).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("get current version: %w", err)
	}
	next := current + 1

	if _, err := s.db.Exec(ctx, create, typeid.NewSnapshotID(), b.ID, next, data); err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	return int(next), nil
}
