package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/whiteboard/backend-go/internal/document"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/snapshot"
	"github.com/inamate/whiteboard/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("board not found")
	ErrInvalidID = errors.New("invalid board id")
)

// Snapshots loads and stores board versions.
type Snapshots interface {
	Latest(ctx context.Context, boardID string) (*document.Board, error)
	Save(ctx context.Context, b *document.Board) (int, error)
}

// Service keeps one engine per open board and writes boards back to the
// snapshot store.
type Service struct {
	snapshots Snapshots
	stepSize  float64

	mu      sync.Mutex
	engines map[string]*engine.Engine
	saved   map[string]int64 // engine version at last save
}

func NewService(snapshots Snapshots, stepSize float64) *Service {
	return &Service{
		snapshots: snapshots,
		stepSize:  stepSize,
		engines:   make(map[string]*engine.Engine),
		saved:     make(map[string]int64),
	}
}

// Create stores a new board, optionally seeded with the sample content.
func (s *Service) Create(ctx context.Context, name string, sample bool) (*document.Board, error) {
	boardID := typeid.NewBoardID()
	var b *document.Board
	if sample {
		b = document.NewSampleBoard(boardID)
		b.Name = name
	} else {
		b = document.NewEmptyBoard(boardID, name)
	}

	version, err := s.snapshots.Save(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	b.Version = version
	return b, nil
}

// Open returns the engine for a board, loading its latest snapshot the
// first time.
func (s *Service) Open(ctx context.Context, boardID string) (*engine.Engine, error) {
	if err := typeid.Validate(boardID, typeid.PrefixBoard); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.engines[boardID]; ok {
		return e, nil
	}

	b, err := s.snapshots.Latest(ctx, boardID)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load board: %w", err)
	}

	e := engine.NewEngine(s.stepSize)
	e.SetBoard(b)
	s.engines[boardID] = e
	s.saved[boardID] = e.Version()
	slog.Info("board opened", "board", boardID, "version", b.Version)
	return e, nil
}

// Save writes the board if it changed since it was last saved. It returns
// whether a snapshot was written.
func (s *Service) Save(ctx context.Context, boardID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, boardID)
}

func (s *Service) saveLocked(ctx context.Context, boardID string) (bool, error) {
	e, ok := s.engines[boardID]
	if !ok {
		return false, ErrNotFound
	}
	version := e.Version()
	if version == s.saved[boardID] {
		return false, nil
	}

	b := e.Board()
	b.AppState.ElementsToHighlight = nil
	if _, err := s.snapshots.Save(ctx, b); err != nil {
		return false, fmt.Errorf("save board %s: %w", boardID, err)
	}
	s.saved[boardID] = version
	return true, nil
}

// Close saves the board and forgets its engine.
func (s *Service) Close(ctx context.Context, boardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.saveLocked(ctx, boardID); err != nil {
		return err
	}
	delete(s.engines, boardID)
	delete(s.saved, boardID)
	return nil
}

// SaveAll writes every changed board. Failures are logged and skipped.
func (s *Service) SaveAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for boardID := range s.engines {
		written, err := s.saveLocked(ctx, boardID)
		if err != nil {
			slog.Error("save board", "board", boardID, "error", err)
			continue
		}
		if written {
			slog.Info("board saved", "board", boardID)
		}
	}
}
