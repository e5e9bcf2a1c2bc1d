package timing

import (
	"sync"
	"time"
)

// Tracker keeps every recorded duration per operation name.
type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		now:     time.Now,
	}
}

// Start begins timing operation. The returned function records and returns
// the elapsed time; calls after the first return the same value.
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := tt.now()

	var (
		once    sync.Once
		elapsed time.Duration
	)
	return func() time.Duration {
		once.Do(func() {
			elapsed = tt.now().Sub(start)

			tt.mu.Lock()
			tt.timings[operation] = append(tt.timings[operation], elapsed)
			tt.mu.Unlock()
		})
		return elapsed
	}
}

func (tt *Tracker) Timings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}
	return append([]time.Duration(nil), timings...)
}

func (tt *Tracker) All() map[string][]time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	result := make(map[string][]time.Duration, len(tt.timings))
	for operation, timings := range tt.timings {
		result[operation] = append([]time.Duration(nil), timings...)
	}
	return result
}

func (tt *Tracker) Average(operation string) time.Duration {
	timings := tt.Timings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range timings {
		total += d
	}
	return total / time.Duration(len(timings))
}
