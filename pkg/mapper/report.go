package mapper

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Report is the result of processing a single record.
type Report struct {
	Counts   map[Outcome]int
	Failures []*LeafError
}

func newReport() *Report {
	return &Report{Counts: map[Outcome]int{}}
}

func (r *Report) record(o Outcome) {
	r.Counts[o]++
}

func (r *Report) fail(err *LeafError) {
	r.Counts[Failed]++
	r.Failures = append(r.Failures, err)
}

// Summary accumulates reports from concurrent batches. The zero value is
// ready to use.
type Summary struct {
	mu       sync.Mutex
	counts   map[Outcome]int
	failures []*LeafError
}

// Add merges r into the summary.
func (s *Summary) Add(r *Report) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts == nil {
		s.counts = map[Outcome]int{}
	}
	for o, n := range r.Counts {
		s.counts[o] += n
	}
	s.failures = append(s.failures, r.Failures...)
}

// Count returns how many leaves ended with o.
func (s *Summary) Count(o Outcome) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[o]
}

// Failures returns a copy of every failure seen so far.
func (s *Summary) Failures() []*LeafError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*LeafError(nil), s.failures...)
}

// Err aggregates the failures, or returns nil when there were none.
func (s *Summary) Err() error {
	var result *multierror.Error
	for _, f := range s.Failures() {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
