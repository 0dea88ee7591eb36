package heist

import (
	"context"
	"time"

	"github.com/levelup/heist/pkg/logger"
	"github.com/levelup/heist/pkg/metrics"
)

// defaultSweepInterval matches the original event's cleanup cadence.
const defaultSweepInterval = 15 * time.Second

// Sweeper periodically force-fails heists whose time budget elapsed with no
// further client interaction. It is the safety net for abandoned heists.
type Sweeper struct {
	engine   *Engine
	interval time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// SweeperOption applies a configuration option to the Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepInterval sets the scan cadence.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweeperLogger sets a custom logger for the sweeper.
func WithSweeperLogger(l logger.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a sweeper over the engine.
func NewSweeper(engine *Engine, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		engine:   engine,
		interval: defaultSweepInterval,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sweeper")
	}
	return s
}

// Start launches the sweep loop. It runs until ctx is canceled or Stop is
// called.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
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
			metrics.RecordSweeperRun()
			if n := s.engine.SweepExpired(ctx); n > 0 {
				s.logger.Info(ctx, "expired heists swept", logger.Int("count", n))
			}
		}
	}
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Sweeper) Stop() {
	select {
	case <-s.shutdown:
		// already stopping
	default:
		close(s.shutdown)
	}
	<-s.done
}
