package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// StatusPoller is the slice of the aggregator the coordinator polls.
type StatusPoller interface {
	UpdateStatus() (bool, time.Time)
}

// RefreshCoordinator tracks in-flight landmark loads and watches for
// deferred-curation completion. While at least one request is showing it
// polls UpdateStatus; a completed curation becomes a pending update event
// for clients to consume, and the coordinator goes idle. An auto-hide
// timer keeps a lost Hide from polling forever. Both timers are cancelled
// on every transition to idle.
type RefreshCoordinator struct {
	poller       StatusPoller
	log          *zap.Logger
	showTimeout  time.Duration
	pollInterval time.Duration
	onUpdate     func(time.Time)

	mu        sync.Mutex
	active    map[string]struct{}
	hideTimer *time.Timer
	pollTick  *time.Ticker
	pollStop  chan struct{}
	pending   bool
	pendingAt time.Time
}

func NewRefreshCoordinator(poller StatusPoller, showTimeout, pollInterval time.Duration, log *zap.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{
		poller:       poller,
		log:          log,
		showTimeout:  showTimeout,
		pollInterval: pollInterval,
		active:       make(map[string]struct{}),
	}
}

// OnUpdate registers a callback fired when curation completes. Set it
// before the first Show.
func (r *RefreshCoordinator) OnUpdate(fn func(time.Time)) {
	r.onUpdate = fn
}

// Show registers an in-flight request. The first active request starts the
// poll loop and the auto-hide timer; re-showing resets auto-hide only.
func (r *RefreshCoordinator) Show(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasIdle := len(r.active) == 0
	r.active[requestID] = struct{}{}

	if r.hideTimer != nil {
		r.hideTimer.Stop()
	}
	r.hideTimer = time.AfterFunc(r.showTimeout, r.autoHide)

	if wasIdle {
		r.startPollingLocked()
	}
}

// Hide removes one request; removing the last active request stops the
// timers.
func (r *RefreshCoordinator) Hide(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, requestID)
	if len(r.active) == 0 {
		r.stopLocked()
	}
}

// Dismiss clears every active request unconditionally.
func (r *RefreshCoordinator) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Showing reports whether any request is in flight.
func (r *RefreshCoordinator) Showing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active) > 0
}

// Peek reports a pending update without consuming it.
func (r *RefreshCoordinator) Peek() (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.pendingAt
}

// Consume returns and clears the pending update event.
func (r *RefreshCoordinator) Consume() (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok, at := r.pending, r.pendingAt
	r.pending = false
	return ok, at
}

func (r *RefreshCoordinator) startPollingLocked() {
	tick := time.NewTicker(r.pollInterval)
	stop := make(chan struct{})
	r.pollTick = tick
	r.pollStop = stop
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				r.poll()
			}
		}
	}()
}

func (r *RefreshCoordinator) poll() {
	ok, at := r.poller.UpdateStatus()
	if !ok {
		return
	}
	r.mu.Lock()
	r.pending = true
	r.pendingAt = at
	fn := r.onUpdate
	r.stopLocked()
	r.mu.Unlock()

	if fn != nil {
		fn(at)
	}
	r.log.Info("landmark update ready", zap.Time("at", at))
}

func (r *RefreshCoordinator) autoHide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.active) == 0 {
		return
	}
	r.log.Debug("refresh auto-hide")
	r.stopLocked()
}

// stopLocked transitions to idle: clears the active set and cancels both
// timers. Callers hold r.mu.
func (r *RefreshCoordinator) stopLocked() {
	r.active = make(map[string]struct{})
	if r.hideTimer != nil {
		r.hideTimer.Stop()
		r.hideTimer = nil
	}
	if r.pollTick != nil {
		r.pollTick.Stop()
		r.pollTick = nil
	}
	if r.pollStop != nil {
		close(r.pollStop)
		r.pollStop = nil
	}
}
