package grocery

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/grocer/internal/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupListStore(t *testing.T) (*ListStore, *store.MemoryKV, *fakeClock) {
	t.Helper()
	kv := store.NewMemoryKV()
	clock := &fakeClock{now: t0}
	ls := NewListStore(kv, discardLogger(), WithClock(clock.Now), WithIDFunc(seqIDs()))
	ls.Initialize()
	return ls, kv, clock
}

func days(n int) *int { return &n }
