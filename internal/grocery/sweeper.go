package grocery

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the escalation sweep runs.
const DefaultSweepInterval = 60 * time.Second

// Sweeper runs SweepPriorities once on Start and then on every tick until
// Stop is called or the context passed to Start is done.
type Sweeper struct {
	mu       sync.Mutex
	list     *ListStore
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewSweeper(list *ListStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		list:     list,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper does
// nothing.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.logger.Debug("sweeper started", "interval", s.interval)
		defer s.logger.Debug("sweeper stopped")

		s.list.SweepPriorities()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.list.SweepPriorities()
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. It is safe to call
// before Start and more than once.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
