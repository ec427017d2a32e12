package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/vws/vws"
)

func TestStore_ObserveAndSnapshotClone(t *testing.T) {
	var s Store
	before := time.Now()
	s.Start("abc")
	s.Observe(1, vws.StatusProcessing)
	s.Observe(2, vws.StatusProcessing)

	snap := s.Snapshot()
	if snap.TargetID != "abc" {
		t.Fatalf("TargetID = %q, want abc", snap.TargetID)
	}
	if snap.Attempts() != 2 || snap.LastStatus() != vws.StatusProcessing {
		t.Fatalf("snapshot = %d polls / %q, want 2 / processing", snap.Attempts(), snap.LastStatus())
	}
	if snap.Started.Before(before) {
		t.Fatalf("Started = %v, want >= %v", snap.Started, before)
	}
	if snap.Done {
		t.Fatalf("Done = true before Finish")
	}

	snap.Polls[0].Status = vws.StatusFailed
	if s.Snapshot().Polls[0].Status != vws.StatusProcessing {
		t.Fatalf("Snapshot should clone polls")
	}
}

func TestStore_FinishRecordsOutcome(t *testing.T) {
	var s Store
	s.Start("abc")
	s.Observe(1, vws.StatusSuccess)

	record := &vws.TargetStatusAndRecord{Status: vws.StatusSuccess, TargetRecord: vws.TargetRecord{TargetID: "abc"}}
	s.Finish(record, nil)
	record.Status = vws.StatusFailed

	snap := s.Snapshot()
	if !snap.Done || snap.Record == nil || snap.Record.Status != vws.StatusSuccess {
		t.Fatalf("snapshot = %+v, want done with success record", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
	if got := snap.Elapsed(time.Now().Add(time.Hour)); got > time.Minute {
		t.Fatalf("Elapsed = %s, want it frozen at the last poll", got)
	}
}

func TestStore_FinishWithErrorWrapsOriginal(t *testing.T) {
	var s Store
	s.Start("abc")
	orig := errors.New("boom")
	s.Finish(nil, orig)

	snap := s.Snapshot()
	if !errors.Is(snap.LastError, orig) {
		t.Fatalf("LastError = %v, want it to wrap %v", snap.LastError, orig)
	}
	if snap.LastStatus() != "" {
		t.Fatalf("LastStatus = %q, want empty", snap.LastStatus())
	}
}

func TestStore_StartResets(t *testing.T) {
	var s Store
	s.Start("first")
	s.Observe(1, vws.StatusProcessing)
	s.Finish(nil, errors.New("boom"))

	s.Start("second")
	snap := s.Snapshot()
	if snap.TargetID != "second" || snap.Attempts() != 0 || snap.Done || snap.LastError != nil {
		t.Fatalf("snapshot after Start = %+v, want fresh", snap)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	s.Start("abc")

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Observe(n, vws.StatusProcessing)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	if got := s.Snapshot().Attempts(); got != 50 {
		t.Fatalf("Attempts = %d, want 50", got)
	}
}
