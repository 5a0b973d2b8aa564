// internal/app/system/workers/consolesweeper.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper evicts entries idle for longer than the given duration and
// reports how many it removed.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// ConsoleSweeper is a background worker that drops idle admin consoles.
type ConsoleSweeper struct {
	target   Sweeper
	log      *zap.Logger
	interval time.Duration
	idle     time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewConsoleSweeper creates the worker. interval is how often to sweep;
// idle is how long a console may go unused before it is evicted.
func NewConsoleSweeper(target Sweeper, logger *zap.Logger, interval, idle time.Duration) *ConsoleSweeper {
	return &ConsoleSweeper{
		target:   target,
		log:      logger,
		interval: interval,
		idle:     idle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *ConsoleSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("console sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_timeout", w.idle))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *ConsoleSweeper) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("console sweeper stopped")
}

func (w *ConsoleSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if n := w.target.Sweep(w.idle); n > 0 {
				w.log.Info("evicted idle consoles", zap.Int("count", n))
			}
		}
	}
}
