package vws_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vws/internal/vwstest"
	"github.com/five82/vws/vws"
)

func TestWaitForTargetProcessedSucceeds(t *testing.T) {
	srv := vwstest.New(t, vwstest.WithProcessingTime(500*time.Millisecond))
	client := newClient(t, srv)
	id := addWidget(t, client, "widget", widgetImage)

	var polls int
	var statuses []vws.TargetStatus
	record, err := client.WaitForTargetProcessed(context.Background(), id, vws.WaitOptions{
		PollInterval: 100 * time.Millisecond,
		Timeout:      5 * time.Second,
		OnPoll: func(attempt int, status vws.TargetStatus) {
			polls = attempt
			statuses = append(statuses, status)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, vws.StatusSuccess, record.Status)
	assert.GreaterOrEqual(t, polls, 1)
	assert.LessOrEqual(t, polls, int(math.Ceil(5/0.1)))
	assert.Equal(t, vws.StatusProcessing, statuses[0])
	assert.Equal(t, vws.StatusSuccess, statuses[len(statuses)-1])
}

func TestWaitTreatsFailedAsTerminal(t *testing.T) {
	srv := vwstest.New(t, vwstest.WithProcessingTime(150*time.Millisecond))
	client := newClient(t, srv)
	id := addWidget(t, client, "widget", widgetImage)
	srv.SetFinalStatus(id, "failed")

	record, err := client.WaitForTargetProcessed(context.Background(), id, vws.WaitOptions{
		PollInterval: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, vws.StatusFailed, record.Status)
}

// stuckServer always reports processing and counts polls.
func stuckServer(t *testing.T) (*vws.Client, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result_code": "Success",
			"status":      "processing",
			"target_record": map[string]any{
				"target_id":       "stuck",
				"active_flag":     true,
				"name":            "stuck",
				"width":           1,
				"tracking_rating": -1,
				"reco_rating":     "",
			},
		})
	}))
	t.Cleanup(server.Close)

	client, err := vws.NewClient(vws.Config{AccessKey: "a", SecretKey: "s", BaseURL: server.URL})
	require.NoError(t, err)
	return client, &polls
}

func TestWaitStopsAfterMaxAttempts(t *testing.T) {
	client, polls := stuckServer(t)

	_, err := client.WaitForTargetProcessed(context.Background(), "stuck", vws.WaitOptions{
		PollInterval: 5 * time.Millisecond,
		MaxAttempts:  4,
	})
	require.ErrorIs(t, err, vws.KindTargetProcessingTimeout)

	var waitErr *vws.TargetProcessingTimeoutError
	require.ErrorAs(t, err, &waitErr)
	assert.Equal(t, "stuck", waitErr.TargetID)
	assert.Equal(t, vws.StatusProcessing, waitErr.LastStatus)
	assert.Equal(t, 4, waitErr.Attempts)
	assert.EqualValues(t, 4, polls.Load())
}

func TestWaitStopsAfterTimeBudget(t *testing.T) {
	client, polls := stuckServer(t)

	start := time.Now()
	_, err := client.WaitForTargetProcessed(context.Background(), "stuck", vws.WaitOptions{
		PollInterval: 20 * time.Millisecond,
		Timeout:      200 * time.Millisecond,
	})
	require.ErrorIs(t, err, vws.KindTargetProcessingTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.LessOrEqual(t, polls.Load(), int32(10))
	assert.NotErrorIs(t, err, vws.KindRequestTimeout)
}

func TestWaitHonorsContext(t *testing.T) {
	client, _ := stuckServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err := client.WaitForTargetProcessed(ctx, "stuck", vws.WaitOptions{PollInterval: 20 * time.Millisecond})
	require.Error(t, err)
	assert.NotErrorIs(t, err, vws.KindTargetProcessingTimeout)
}

func TestWaitPropagatesPollErrors(t *testing.T) {
	srv := vwstest.New(t)
	client := newClient(t, srv)

	_, err := client.WaitForTargetProcessed(context.Background(), "missing", vws.WaitOptions{})
	assert.ErrorIs(t, err, vws.KindUnknownTarget)
}
