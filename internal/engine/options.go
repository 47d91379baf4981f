package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DrainPolicy names the strategy SyncOfflineChanges applies to the queue.
type DrainPolicy string

const (
	// DrainBestEffortClearAll replays every queued action in FIFO order,
	// swallowing individual failures, then clears the whole queue regardless
	// of how many actions failed. A persistently failing action is therefore
	// dropped, not retried on the next drain. This is the accepted-loss
	// policy of the system, not an oversight.
	DrainBestEffortClearAll DrainPolicy = "best_effort_clear_all"
)

// Option configures the engine.
type Option func(*options)

type options struct {
	clock       func() time.Time
	localID     func() int
	actionID    func() string
	drainPolicy DrainPolicy
}

func defaultOptions() *options {
	return &options{
		clock:       time.Now,
		localID:     newLocalIDGenerator(time.Now),
		actionID:    uuid.NewString,
		drainPolicy: DrainBestEffortClearAll,
	}
}

// WithClock substitutes the time source. Tests use it to pin "today" for the
// due-task query and placeholder id generation.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
			o.localID = newLocalIDGenerator(clock)
		}
	}
}

// WithLocalIDGenerator substitutes the placeholder-id source for tasks
// created offline.
func WithLocalIDGenerator(gen func() int) Option {
	return func(o *options) {
		if gen != nil {
			o.localID = gen
		}
	}
}

// WithActionIDGenerator substitutes the offline-action id source.
func WithActionIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.actionID = gen
		}
	}
}

// WithDrainPolicy sets the queue drain policy. Only
// DrainBestEffortClearAll is currently implemented.
func WithDrainPolicy(p DrainPolicy) Option {
	return func(o *options) {
		if p != "" {
			o.drainPolicy = p
		}
	}
}

// newLocalIDGenerator yields millisecond-timestamp placeholder ids, bumped on
// collision so two offline creates in the same millisecond stay distinct.
func newLocalIDGenerator(clock func() time.Time) func() int {
	var mu sync.Mutex
	var last int64
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		now := clock().UnixMilli()
		if now <= last {
			now = last + 1
		}
		last = now
		return int(now)
	}
}
