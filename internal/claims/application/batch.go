package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
)

// UnitProcessor processes one consignment.
type UnitProcessor interface {
	Process(ctx context.Context, c Consignment) (*Outcome, error)
}

// Success is a consignment that produced a claim.
type Success struct {
	ConsignmentID string             `json:"consignment_id"`
	ClaimID       string             `json:"claim_id"`
	ClaimNumber   string             `json:"claim_number"`
	Disposition   claims.Disposition `json:"disposition"`
}

// Failure is a consignment that did not produce a claim.
type Failure struct {
	ConsignmentID string `json:"consignment_id"`
	Reason        string `json:"reason"`
	ReferenceMiss bool   `json:"reference_miss,omitempty"`
}

// BatchSummary reports a batch run. Both lists are sorted by consignment id.
type BatchSummary struct {
	Succeeded []Success     `json:"succeeded"`
	Failed    []Failure     `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Batch runs consignments through a UnitProcessor on a bounded worker
// pool. A failing unit never stops its siblings.
type Batch struct {
	processor UnitProcessor
	workers   func() int
	log       *logger.Logger
}

// NewBatch constructs a Batch. workers is read at the start of each run.
func NewBatch(processor UnitProcessor, workers func() int, log *logger.Logger) (*Batch, error) {
	if processor == nil {
		return nil, errors.New("batch: nil processor")
	}
	if workers == nil {
		workers = func() int { return 1 }
	}
	return &Batch{processor: processor, workers: workers, log: logger.OrNop(log)}, nil
}

// Run processes every consignment and collects the results.
func (b *Batch) Run(ctx context.Context, consignments []Consignment) BatchSummary {
	start := time.Now()
	limit := b.workers()
	if limit <= 0 {
		limit = 1
	}

	var (
		mu      sync.Mutex
		summary BatchSummary
		g       errgroup.Group
	)
	g.SetLimit(limit)
	for _, c := range consignments {
		c := c
		g.Go(func() error {
			out, err := b.runUnit(ctx, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed = append(summary.Failed, Failure{
					ConsignmentID: c.ID,
					Reason:        err.Error(),
					ReferenceMiss: errors.Is(err, claims.ErrReferenceNotFound),
				})
				return nil
			}
			summary.Succeeded = append(summary.Succeeded, Success{
				ConsignmentID: c.ID,
				ClaimID:       out.Claim.ID,
				ClaimNumber:   out.Claim.ClaimNumber,
				Disposition:   out.Claim.Disposition,
			})
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.Succeeded, func(i, j int) bool {
		return summary.Succeeded[i].ConsignmentID < summary.Succeeded[j].ConsignmentID
	})
	sort.Slice(summary.Failed, func(i, j int) bool {
		return summary.Failed[i].ConsignmentID < summary.Failed[j].ConsignmentID
	})
	summary.Duration = time.Since(start)

	metrics.ObserveBatch(len(summary.Succeeded), len(summary.Failed), summary.Duration)
	for _, f := range summary.Failed {
		b.log.Warn("consignment failed", "consignment_id", f.ConsignmentID, "reason", f.Reason)
	}
	b.log.Info("claim batch finished",
		"succeeded", len(summary.Succeeded),
		"failed", len(summary.Failed),
		"duration", summary.Duration,
	)
	return summary
}

func (b *Batch) runUnit(ctx context.Context, c Consignment) (out *Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consignment %s: panic: %v", c.ID, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.processor.Process(ctx, c)
}
