package session

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/congressle/apps/go-server/internal/daily"
)

// Watcher polls the clock for period rollovers.
// Tick is idempotent within a period, so the poll interval only bounds how
// late a rollover is noticed.
type Watcher struct {
	clock    daily.Clock
	selector *daily.Selector
	interval time.Duration

	mu   sync.Mutex // guards last
	last string
}

// NewWatcher starts watching from the current period.
func NewWatcher(sel *daily.Selector, clock daily.Clock, interval time.Duration) *Watcher {
	if clock == nil {
		clock = daily.SystemClock
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		clock:    clock,
		selector: sel,
		interval: interval,
		last:     sel.Key(clock.Now()),
	}
}

// Current returns the last period key the watcher observed.
func (w *Watcher) Current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Tick re-reads the clock and reports whether the period changed since the
// previous tick.
func (w *Watcher) Tick() (key string, rolled bool) {
	key = w.selector.Key(w.clock.Now())
	w.mu.Lock()
	defer w.mu.Unlock()
	if key == w.last {
		return key, false
	}
	w.last = key
	return key, true
}

// Run ticks every interval and calls fn on each rollover until ctx ends.
func (w *Watcher) Run(ctx context.Context, fn func(key string)) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if key, rolled := w.Tick(); rolled {
				fn(key)
			}
		}
	}
}
