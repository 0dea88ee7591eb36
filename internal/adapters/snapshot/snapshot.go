// Package snapshot persists game state to a JSON file on a fixed cadence and
// restores it on boot. Best-effort only: a failed write is logged, never fatal.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/levelup/heist/internal/domain/model"
	"github.com/levelup/heist/pkg/logger"
	"github.com/levelup/heist/pkg/metrics"
)

// defaultInterval matches the original event's autosave cadence.
const defaultInterval = 60 * time.Second

// snapshotFileMode keeps the state file owner-readable only; it contains
// team access codes.
const snapshotFileMode = 0o600

// State is the serialized world: everything needed to resume an event after
// a process restart.
type State struct {
	Teams    []teamRecord               `json:"teams"`
	PowerUps map[string][]model.PowerUp `json:"powerUps"`
	Heists   []*model.Heist             `json:"heists"`
	SavedAt  time.Time                  `json:"savedAt"`
}

// teamRecord re-exposes the access code that the API-facing Team JSON hides.
type teamRecord struct {
	model.Team
	AccessCode string `json:"accessCode"`
}

// Collector produces the current state for persistence.
type Collector func(ctx context.Context) (teams []model.Team, codes map[string]string, powerUps map[string][]model.PowerUp, heists []*model.Heist)

// Restorer pushes a loaded state back into the stores.
type Restorer func(ctx context.Context, teams []model.Team, codes map[string]string, powerUps map[string][]model.PowerUp, heists []*model.Heist)

// Saver writes periodic snapshots.
type Saver struct {
	path     string
	interval time.Duration
	collect  Collector

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Saver.
type Option func(*Saver)

// WithInterval sets the autosave cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Saver) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets a custom logger for the saver.
func WithLogger(l logger.Logger) Option {
	return func(s *Saver) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSaver creates a snapshot saver writing to path.
func NewSaver(path string, collect Collector, opts ...Option) *Saver {
	s := &Saver{
		path:     path,
		interval: defaultInterval,
		collect:  collect,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("snapshot")
	}
	return s
}

// Start launches the autosave loop.
func (s *Saver) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			if err := s.Save(ctx); err != nil {
				metrics.RecordSnapshotError()
				s.logger.Warn(ctx, "autosave failed", logger.Error(err))
			}
		}
	}
}

// Stop signals the autosave loop to exit, waits for it, and writes one final
// snapshot.
func (s *Saver) Stop(ctx context.Context) {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
	<-s.done

	if err := s.Save(ctx); err != nil {
		metrics.RecordSnapshotError()
		s.logger.Warn(ctx, "final snapshot failed", logger.Error(err))
	}
}

// Save collects and writes one snapshot.
func (s *Saver) Save(ctx context.Context) error {
	start := time.Now()

	teams, codes, powerUps, heists := s.collect(ctx)
	state := State{
		Teams:    make([]teamRecord, 0, len(teams)),
		PowerUps: powerUps,
		Heists:   heists,
		SavedAt:  time.Now(),
	}
	for _, t := range teams {
		state.Teams = append(state.Teams, teamRecord{Team: t, AccessCode: codes[t.ID]})
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	// Write to a temp file first so a crash mid-write cannot corrupt the
	// last good snapshot.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, snapshotFileMode); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	metrics.RecordSnapshotDuration(float64(time.Since(start).Milliseconds()), state.SavedAt.Unix())
	s.logger.Debug(ctx, "state saved",
		logger.Int("teams", len(state.Teams)),
		logger.Int("heists", len(state.Heists)),
	)
	return nil
}

// Load reads a snapshot from path and hands it to restore. A missing file is
// not an error; a corrupt one is reported and otherwise ignored.
func Load(ctx context.Context, path string, restore Restorer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	teams := make([]model.Team, 0, len(state.Teams))
	codes := make(map[string]string, len(state.Teams))
	for _, rec := range state.Teams {
		teams = append(teams, rec.Team)
		codes[rec.Team.ID] = rec.AccessCode
	}
	restore(ctx, teams, codes, state.PowerUps, state.Heists)
	return nil
}
