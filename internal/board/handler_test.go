package board

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/element"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/snapshot"
)

type memSnapshots struct {
	mu     sync.Mutex
	boards map[string][]*document.Board
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{boards: map[string][]*document.Board{}}
}

func (m *memSnapshots) Latest(_ context.Context, boardID string) (*document.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.boards[boardID]
	if len(versions) == 0 {
		return nil, snapshot.ErrNotFound
	}
	data, _ := json.Marshal(versions[len(versions)-1])
	return document.Parse(data)
}

func (m *memSnapshots) Save(_ context.Context, b *document.Board) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := json.Marshal(b)
	copied, err := document.Parse(data)
	if err != nil {
		return 0, err
	}
	m.boards[b.ID] = append(m.boards[b.ID], copied)
	copied.Version = len(m.boards[b.ID])
	return copied.Version, nil
}

func (m *memSnapshots) count(boardID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.boards[boardID])
}

func newTestRouter(t *testing.T) (*mux.Router, *memSnapshots) {
	t.Helper()
	snaps := newMemSnapshots()
	h := NewHandler(NewService(snaps, 10))
	r := mux.NewRouter()
	h.Routes(r.PathPrefix("/api").Subrouter())
	return r, snaps
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createBoard(t *testing.T, r http.Handler) *document.Board {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/boards", `{"name":"demo","sample":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b, err := document.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	return b
}

func TestCreateAndGetBoard(t *testing.T) {
	r, snaps := newTestRouter(t)
	b := createBoard(t, r)
	assert.Equal(t, "demo", b.Name)
	assert.Equal(t, 1, snaps.count(b.ID))

	rec := do(t, r, http.MethodGet, "/api/boards/"+b.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := document.Parse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, got.Elements, len(b.Elements))
}

func TestGetBoardErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/boards/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/boards/board_01h455vb4pex5vsknk084sn02q", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/boards", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelectResizeAndSave(t *testing.T) {
	r, snaps := newTestRouter(t)
	b := createBoard(t, r)

	var imageID string
	for _, el := range b.Elements {
		if el.Type == element.KindImage {
			imageID = el.ID
		}
	}
	require.NotEmpty(t, imageID)

	rec := do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/selection", `{"ids":["`+imageID+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"width":160,"height":120}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/resize", `{"property":"width","value":80}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Units      int                `json:"units"`
		Changed    bool               `json:"changed"`
		Dimensions map[string]float64 `json:"dimensions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Units)
	assert.True(t, resp.Changed)
	assert.Equal(t, map[string]float64{"width": 80, "height": 60}, resp.Dimensions)

	rec = do(t, r, http.MethodGet, "/api/boards/"+b.ID+"/dimensions", "")
	assert.JSONEq(t, `{"width":80,"height":60}`, rec.Body.String())

	rec = do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/resize", `{"property":"depth","value":80}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"saved":true}`, rec.Body.String())
	assert.Equal(t, 2, snaps.count(b.ID))

	rec = do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/snapshots", "")
	assert.JSONEq(t, `{"saved":false}`, rec.Body.String())
	assert.Equal(t, 2, snaps.count(b.ID))
}

func TestResizeRefusedDuringGesture(t *testing.T) {
	snaps := newMemSnapshots()
	svc := NewService(snaps, 10)
	r := mux.NewRouter()
	NewHandler(svc).Routes(r.PathPrefix("/api").Subrouter())

	b := createBoard(t, r)
	e, err := svc.Open(context.Background(), b.ID)
	require.NoError(t, err)
	require.NoError(t, e.SetSelection([]string{b.Elements[0].ID}))
	require.NoError(t, e.BeginResize())
	_, err = e.UpdateResize("width", 10, engine.Options{})
	require.NoError(t, err)
	before := e.Board()

	rec := do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/resize", `{"property":"width","value":300}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), engine.ErrResizeInProgress.Error())
	assert.Equal(t, before.Elements[0].Width, e.Board().Elements[0].Width)

	require.NoError(t, e.CancelResize())
	rec = do(t, r, http.MethodPost, "/api/boards/"+b.ID+"/resize", `{"property":"width","value":300}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
