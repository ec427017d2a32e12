package app

import (
	"context"

	"github.com/five82/vws/internal/state"
	"github.com/five82/vws/vws"
)

// waitResult is the outcome of a background wait.
type waitResult struct {
	record *vws.TargetStatusAndRecord
	err    error
}

// StartWait runs WaitForTargetProcessed in a goroutine, publishing every poll
// to store. It returns immediately; the channel yields exactly one result.
func StartWait(ctx context.Context, store *state.Store, client *vws.Client, targetID string, opts vws.WaitOptions) <-chan waitResult {
	store.Start(targetID)
	hook := opts.OnPoll
	opts.OnPoll = func(attempt int, status vws.TargetStatus) {
		store.Observe(attempt, status)
		if hook != nil {
			hook(attempt, status)
		}
	}

	done := make(chan waitResult, 1)
	go func() {
		record, err := client.WaitForTargetProcessed(ctx, targetID, opts)
		store.Finish(record, err)
		done <- waitResult{record: record, err: err}
	}()
	return done
}
