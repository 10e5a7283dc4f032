package snapshot

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
)

type storedSnapshot struct {
	boardID string
	version int32
	data    []byte
}

// memDB answers the store's queries from memory.
type memDB struct {
	rows []storedSnapshot
}

type memRow struct {
	values []any
	err    error
}

func (r memRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int32:
			*p = r.values[i].(int32)
		case *[]byte:
			*p = r.values[i].([]byte)
		}
	}
	return nil
}

func (m *memDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	m.rows = append(m.rows, storedSnapshot{
		boardID: args[1].(string),
		version: args[2].(int32),
		data:    args[3].([]byte),
	})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *memDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	boardID := args[0].(string)
	var latest *storedSnapshot
	for i := range m.rows {
		if m.rows[i].boardID == boardID && (latest == nil || m.rows[i].version > latest.version) {
			latest = &m.rows[i]
		}
	}
	if strings.Contains(sql, "MAX(version)") {
		if latest == nil {
			return memRow{values: []any{int32(0)}}
		}
		return memRow{values: []any{latest.version}}
	}
	if latest == nil {
		return memRow{err: pgx.ErrNoRows}
	}
	return memRow{values: []any{latest.version, latest.data}}
}

func TestLatestNotFound(t *testing.T) {
	s := NewStore(&memDB{})
	_, err := s.Latest(context.Background(), "board_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIncrementsVersion(t *testing.T) {
	ctx := context.Background()
	db := &memDB{}
	s := NewStore(db)

	b := document.NewEmptyBoard("board_a", "A")
	b.Elements = append(b.Elements, &element.Element{ID: "r", Type: element.KindRectangle, Width: 10, Height: 10})

	v, err := s.Save(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	b.Elements[0].Width = 20
	v, err = s.Save(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	got, err := s.Latest(ctx, "board_a")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, 20.0, got.Elements[0].Width)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(db.rows[0].data, &raw))
	assert.Equal(t, "board_a", raw["id"])
}
