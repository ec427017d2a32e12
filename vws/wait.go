package vws

import (
	"context"
	"fmt"
	"time"
)

// Wait defaults.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultWaitTimeout  = 5 * time.Minute
)

// WaitOptions bounds WaitForTargetProcessed.
type WaitOptions struct {
	// PollInterval is the pause between polls. Defaults to DefaultPollInterval.
	PollInterval time.Duration
	// Timeout is the elapsed-time budget. When both Timeout and MaxAttempts
	// are zero it defaults to DefaultWaitTimeout.
	Timeout time.Duration
	// MaxAttempts caps the number of polls. Zero means no cap.
	MaxAttempts int
	// OnPoll, when set, is called after every successful poll.
	OnPoll func(attempt int, status TargetStatus)
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Timeout <= 0 && o.MaxAttempts <= 0 {
		o.Timeout = DefaultWaitTimeout
	}
	return o
}

// WaitForTargetProcessed polls the target record until its status leaves
// processing, and returns the final record. Both success and failed end the
// wait without error. Errors from polling are returned unchanged. When the
// budget runs out a *TargetProcessingTimeoutError is returned without one
// last sleep.
func (c *Client) WaitForTargetProcessed(ctx context.Context, targetID string, opts WaitOptions) (*TargetStatusAndRecord, error) {
	const op = "wait for target processed"
	if err := validateTargetID(op, targetID); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	start := time.Now()
	for attempt := 1; ; attempt++ {
		record, err := c.GetTargetRecord(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if opts.OnPoll != nil {
			opts.OnPoll(attempt, record.Status)
		}
		if record.Status != StatusProcessing {
			return record, nil
		}

		elapsed := time.Since(start)
		outOfAttempts := opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts
		outOfTime := opts.Timeout > 0 && elapsed+opts.PollInterval > opts.Timeout
		if outOfAttempts || outOfTime {
			c.conn.logger.Debug("target still processing",
				"target_id", targetID,
				"attempts", attempt,
				"elapsed", elapsed,
			)
			return nil, &TargetProcessingTimeoutError{
				TargetID:   targetID,
				LastStatus: record.Status,
				Attempts:   attempt,
				Elapsed:    elapsed,
			}
		}

		timer := time.NewTimer(opts.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}
}
