package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uppf-claims/internal/claims/application"
	claims "uppf-claims/internal/claims/domain"
)

type stubProcessor struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	fail    map[string]error
	panics  map[string]bool
}

func (s *stubProcessor) Process(_ context.Context, c application.Consignment) (*application.Outcome, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if s.panics[c.ID] {
		panic("boom")
	}
	if err := s.fail[c.ID]; err != nil {
		return nil, err
	}
	return &application.Outcome{Claim: &claims.Claim{
		ID:          "claim-" + c.ID,
		ClaimNumber: "N-" + c.ID,
		Disposition: claims.DispositionAutoSubmit,
	}}, nil
}

func TestBatchIsolatesFailures(t *testing.T) {
	proc := &stubProcessor{
		fail: map[string]error{
			"c-2": fmt.Errorf("equalisation point: %w", claims.ErrReferenceNotFound),
			"c-4": errors.New("db down"),
		},
		panics: map[string]bool{"c-3": true},
	}
	batch, err := application.NewBatch(proc, func() int { return 2 }, nil)
	require.NoError(t, err)

	var in []application.Consignment
	for _, id := range []string{"c-5", "c-4", "c-3", "c-2", "c-1"} {
		in = append(in, application.Consignment{ID: id})
	}
	summary := batch.Run(context.Background(), in)

	require.Len(t, summary.Succeeded, 2)
	assert.Equal(t, "c-1", summary.Succeeded[0].ConsignmentID)
	assert.Equal(t, "c-5", summary.Succeeded[1].ConsignmentID)
	assert.Equal(t, "claim-c-1", summary.Succeeded[0].ClaimID)

	require.Len(t, summary.Failed, 3)
	assert.Equal(t, "c-2", summary.Failed[0].ConsignmentID)
	assert.True(t, summary.Failed[0].ReferenceMiss)
	assert.Contains(t, summary.Failed[1].Reason, "panic")
	assert.False(t, summary.Failed[2].ReferenceMiss)
	assert.LessOrEqual(t, proc.maxSeen.Load(), int32(2))
}

func TestBatchCancelledContext(t *testing.T) {
	batch, err := application.NewBatch(&stubProcessor{}, func() int { return 4 }, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := batch.Run(ctx, []application.Consignment{{ID: "a"}, {ID: "b"}})
	assert.Empty(t, summary.Succeeded)
	assert.Len(t, summary.Failed, 2)
}

func TestNewBatchRequiresProcessor(t *testing.T) {
	_, err := application.NewBatch(nil, nil, nil)
	assert.Error(t, err)
}
