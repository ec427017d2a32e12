package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/vws/vws"
)

// Poll is one observed status.
type Poll struct {
	Attempt int
	Status  vws.TargetStatus
	At      time.Time
}

// Snapshot represents the progress of one processing wait.
type Snapshot struct {
	TargetID  string
	Started   time.Time
	Polls     []Poll
	Record    *vws.TargetStatusAndRecord
	LastError error
	Done      bool
}

// Attempts returns the number of polls observed so far.
func (s Snapshot) Attempts() int {
	return len(s.Polls)
}

// LastStatus returns the most recent status, or "" before the first poll.
func (s Snapshot) LastStatus() vws.TargetStatus {
	if len(s.Polls) == 0 {
		return ""
	}
	return s.Polls[len(s.Polls)-1].Status
}

// Elapsed returns the time since the wait started, frozen once it is done.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	if s.Done && len(s.Polls) > 0 {
		return s.Polls[len(s.Polls)-1].At.Sub(s.Started)
	}
	return now.Sub(s.Started)
}

// Store coordinates the wait goroutine and the view reading it.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Start resets the store for a new wait.
func (s *Store) Start(targetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{TargetID: targetID, Started: time.Now()}
}

// Observe records a poll. Its signature matches vws.WaitOptions.OnPoll.
func (s *Store) Observe(attempt int, status vws.TargetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Polls = append(s.snapshot.Polls, Poll{Attempt: attempt, Status: status, At: time.Now()})
}

// Finish records the outcome of the wait.
func (s *Store) Finish(record *vws.TargetStatusAndRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record != nil {
		dup := *record
		s.snapshot.Record = &dup
	}
	s.snapshot.LastError = err
	s.snapshot.Done = true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Polls = clonePolls(s.snapshot.Polls)
	if s.snapshot.Record != nil {
		dup := *s.snapshot.Record
		snap.Record = &dup
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func clonePolls(polls []Poll) []Poll {
	if len(polls) == 0 {
		return nil
	}
	dup := make([]Poll, len(polls))
	copy(dup, polls)
	return dup
}
