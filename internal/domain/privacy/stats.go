package privacy

import (
	"context"
	"sync"
	"time"

	"github.com/matiasleandrokruk/soksol/internal/domain/chat"
	"github.com/matiasleandrokruk/soksol/internal/infra/eventbus"
)

// Stats aggregates chat outcomes into per-code counters. It only ever sees
// codes, statuses and durations. All methods are thread-safe.
type Stats struct {
	mu        sync.Mutex
	counts    map[chat.Code]int64
	total     int64
	totalTime time.Duration
	maxTime   time.Duration
}

// ActivitySnapshot is a point-in-time copy of Stats.
type ActivitySnapshot struct {
	Outcomes     map[string]int64 `json:"outcomes"`
	Total        int64            `json:"total"`
	AvgLatencyMs float64          `json:"avgLatencyMs"`
	MaxLatencyMs int64            `json:"maxLatencyMs"`
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{counts: make(map[chat.Code]int64)}
}

// Record counts one outcome.
func (s *Stats) Record(o chat.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[o.Code]++
	s.total++
	s.totalTime += o.Duration
	if o.Duration > s.maxTime {
		s.maxTime = o.Duration
	}
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() ActivitySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := ActivitySnapshot{
		Outcomes:     make(map[string]int64, len(s.counts)),
		Total:        s.total,
		MaxLatencyMs: s.maxTime.Milliseconds(),
	}
	for code, n := range s.counts {
		out.Outcomes[string(code)] = n
	}
	if s.total > 0 {
		out.AvgLatencyMs = float64(s.totalTime.Milliseconds()) / float64(s.total)
	}
	return out
}

// Run records outcomes from events until the channel closes or ctx is done.
// Payloads that are not a chat.Outcome are ignored.
func (s *Stats) Run(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if o, ok := evt.Payload.(chat.Outcome); ok {
				s.Record(o)
			}
		}
	}
}
