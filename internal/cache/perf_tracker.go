package cache

import (
	"sync"
	"time"
)

// OperationRecord captures one timed provider operation (§4.4 "Performance
// tracker").
type OperationRecord struct {
	Name     string
	Start    time.Time
	End      time.Time
	Success  bool
	Error    string
	Metadata map[string]string
}

func (r OperationRecord) Duration() time.Duration { return r.End.Sub(r.Start) }

// OperationSummary aggregates records sharing an operation name.
type OperationSummary struct {
	Name    string
	Count   int
	Avg     time.Duration
	Min     time.Duration
	Max     time.Duration
	Total   time.Duration
	Success int
	Failed  int
}

// PerfTracker is producer-only from a provider; C8 reads its aggregates.
type PerfTracker struct {
	mu      sync.Mutex
	records []OperationRecord
}

func NewPerfTracker() *PerfTracker { return &PerfTracker{} }

func (t *PerfTracker) Record(r OperationRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Summary aggregates all recorded operations by name.
func (t *PerfTracker) Summary() map[string]OperationSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]OperationSummary)
	for _, r := range t.records {
		s, ok := out[r.Name]
		if !ok {
			s = OperationSummary{Name: r.Name, Min: r.Duration(), Max: r.Duration()}
		}
		d := r.Duration()
		s.Count++
		s.Total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
		if r.Success {
			s.Success++
		} else {
			s.Failed++
		}
		out[r.Name] = s
	}
	for name, s := range out {
		if s.Count > 0 {
			s.Avg = s.Total / time.Duration(s.Count)
		}
		out[name] = s
	}
	return out
}
