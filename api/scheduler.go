/*
scheduler.go - Automated invoice closure scheduler

PURPOSE:
  Runs the scheduled-closure batch once per day: every live credit card
  whose clamped closing day is today gets its Open invoice closed and the
  next cycle opened.

DESIGN:
  - Background goroutine, one cycle per local midnight
  - A failed cycle (account enumeration error) retries after RetryInterval
    instead of waiting a full day
  - Per-account failures inside the batch are logged and skipped by the
    manager; they do not fail the cycle

CONFIGURATION:
  - RetryInterval: Delay before retrying a failed cycle (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewClosureScheduler(manager, clock)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - invoice/lifecycle.go: ProcessScheduledClosures
  - handlers.go: RunClosures endpoint (manual trigger)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lgfauth/money-manager/invoice"
	"github.com/lgfauth/money-manager/ledger"
)

// ClosureScheduler drives the daily invoice closure batch.
type ClosureScheduler struct {
	Manager       *invoice.Manager
	Clock         ledger.Clock
	RetryInterval time.Duration
	Enabled       bool

	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewClosureScheduler creates a new scheduler.
func NewClosureScheduler(manager *invoice.Manager, clock ledger.Clock) *ClosureScheduler {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	return &ClosureScheduler{
		Manager:       manager,
		Clock:         clock,
		RetryInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler. The first cycle runs immediately so a server
// restarted mid-day still closes today's cards.
func (cs *ClosureScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}
	if cs.started {
		return
	}
	cs.started = true
	cs.wg.Add(1)

	go cs.run()

	log.Println("[Scheduler] Started, cycling at local midnight")
}

// Stop stops the scheduler.
func (cs *ClosureScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.started {
		close(cs.stop)
		cs.wg.Wait()
		cs.started = false
		log.Println("[Scheduler] Stopped")
	}
}

// RunNow triggers an immediate cycle (for testing/admin).
func (cs *ClosureScheduler) RunNow() {
	cs.runCycle()
}

func (cs *ClosureScheduler) run() {
	defer cs.wg.Done()

	// Run immediately on start
	ok := cs.runCycle()

	for {
		timer := time.NewTimer(cs.nextWake(ok))
		select {
		case <-timer.C:
			ok = cs.runCycle()
		case <-cs.stop:
			timer.Stop()
			return
		}
	}
}

// nextWake returns how long to sleep: until the next local midnight after a
// successful cycle, RetryInterval after a failed one.
func (cs *ClosureScheduler) nextWake(lastOK bool) time.Duration {
	if !lastOK {
		return cs.RetryInterval
	}
	now := cs.Clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Sub(now)
}

func (cs *ClosureScheduler) runCycle() bool {
	ctx := context.Background()

	processed, skipped, err := cs.Manager.ProcessScheduledClosures(ctx)
	if err != nil {
		log.Printf("[Scheduler] Cycle failed, retrying in %v: %v", cs.RetryInterval, err)
		return false
	}
	if processed > 0 || skipped > 0 {
		log.Printf("[Scheduler] Completed: %d closed, %d skipped (no open invoice)", processed, skipped)
	}
	return true
}
