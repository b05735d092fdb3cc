package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"uppf-claims/internal/claims/application/events"
	claims "uppf-claims/internal/claims/domain"
	"uppf-claims/internal/eventing"
	"uppf-claims/internal/observability/metrics"
	"uppf-claims/internal/platform/logger"
)

// Lifecycle drives claims through their status machine.
type Lifecycle struct {
	repo      ClaimRepository
	publisher EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLifecycle constructs a Lifecycle. A nil publisher drops events.
func NewLifecycle(repo ClaimRepository, publisher EventPublisher, log *logger.Logger, now func() time.Time) (*Lifecycle, error) {
	if repo == nil {
		return nil, errors.New("lifecycle: nil repo")
	}
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{repo: repo, publisher: publisher, log: logger.OrNop(log), now: now}, nil
}

// Skipped is a claim a bulk operation left alone.
type Skipped struct {
	ClaimID string        `json:"claim_id"`
	Status  claims.Status `json:"status"`
	Reason  string        `json:"reason"`
}

// SubmissionSummary reports a window submission.
type SubmissionSummary struct {
	WindowID  string    `json:"window_id"`
	Reference string    `json:"reference"`
	Submitted []string  `json:"submitted"`
	Skipped   []Skipped `json:"skipped,omitempty"`
}

// SubmitWindow submits every ready claim of a window under one reference.
// Claims of the window in other states are reported, not failed.
func (l *Lifecycle) SubmitWindow(ctx context.Context, windowID string) (SubmissionSummary, error) {
	if windowID == "" {
		return SubmissionSummary{}, errors.New("lifecycle: empty window id")
	}
	now := l.now()
	summary := SubmissionSummary{WindowID: windowID, Reference: claims.FormatSubmissionRef(windowID, now)}

	for _, status := range []claims.Status{claims.StatusDraft, claims.StatusRejected} {
		others, err := l.repo.ListByStatus(ctx, status, windowID)
		if err != nil {
			return summary, err
		}
		for _, c := range others {
			summary.Skipped = append(summary.Skipped, Skipped{ClaimID: c.ID, Status: c.Status, Reason: "claim is not ready to submit"})
		}
	}

	ready, err := l.repo.ListByStatus(ctx, claims.StatusReadyToSubmit, windowID)
	if err != nil {
		return summary, err
	}
	for _, c := range ready {
		if err := l.submit(ctx, c, summary.Reference, now); err != nil {
			summary.Skipped = append(summary.Skipped, Skipped{ClaimID: c.ID, Status: c.Status, Reason: err.Error()})
			continue
		}
		summary.Submitted = append(summary.Submitted, c.ID)
	}
	sort.Strings(summary.Submitted)
	sort.Slice(summary.Skipped, func(i, j int) bool { return summary.Skipped[i].ClaimID < summary.Skipped[j].ClaimID })

	l.log.Info("window submitted",
		"window_id", windowID,
		"reference", summary.Reference,
		"submitted", len(summary.Submitted),
		"skipped", len(summary.Skipped),
	)
	return summary, nil
}

// SweepAutoSubmit submits every ready claim whose disposition was
// auto_submit, one reference per window.
func (l *Lifecycle) SweepAutoSubmit(ctx context.Context) ([]string, error) {
	ready, err := l.repo.ListByStatus(ctx, claims.StatusReadyToSubmit, "")
	if err != nil {
		return nil, err
	}
	now := l.now()
	var submitted []string
	for _, c := range ready {
		if c.Disposition != claims.DispositionAutoSubmit {
			continue
		}
		if err := l.submit(ctx, c, claims.FormatSubmissionRef(c.WindowID, now), now); err != nil {
			l.log.Warn("auto submit failed", "claim_id", c.ID, "error", err)
			continue
		}
		submitted = append(submitted, c.ID)
	}
	sort.Strings(submitted)
	return submitted, nil
}

// StartReview marks a submitted claim as under review.
func (l *Lifecycle) StartReview(ctx context.Context, claimID string) (*claims.Claim, error) {
	return l.transition(ctx, claimID, claims.StatusUnderReview, "")
}

// Review approves or rejects a claim under review.
func (l *Lifecycle) Review(ctx context.Context, claimID string, approve bool, note string) (*claims.Claim, error) {
	to := claims.StatusRejected
	if approve {
		to = claims.StatusApproved
	}
	return l.transition(ctx, claimID, to, note)
}

// Cancel cancels a draft or ready claim.
func (l *Lifecycle) Cancel(ctx context.Context, claimID, note string) (*claims.Claim, error) {
	return l.transition(ctx, claimID, claims.StatusCancelled, note)
}

// Reopen returns a rejected claim to draft.
func (l *Lifecycle) Reopen(ctx context.Context, claimID, note string) (*claims.Claim, error) {
	return l.transition(ctx, claimID, claims.StatusDraft, note)
}

// Ready promotes a draft claim to ready_to_submit after manual review.
func (l *Lifecycle) Ready(ctx context.Context, claimID, note string) (*claims.Claim, error) {
	return l.transition(ctx, claimID, claims.StatusReadyToSubmit, note)
}

// MarkSettled moves approved claims to settled under a settlement
// reference. Claims already settled are skipped, so a failed run can be
// repeated. Every claim is attempted; the failures are joined.
func (l *Lifecycle) MarkSettled(ctx context.Context, claimIDs []string, reference string) error {
	var errs []error
	for _, id := range claimIDs {
		c, err := l.repo.Get(ctx, id)
		if err == nil && c.Status == claims.StatusSettled {
			continue
		}
		if err == nil {
			err = l.apply(ctx, c, claims.StatusSettled, reference)
		}
		if err != nil {
			l.log.Warn("mark claim settled failed", "claim_id", id, "reference", reference, "error", err)
			errs = append(errs, fmt.Errorf("claim %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (l *Lifecycle) submit(ctx context.Context, c *claims.Claim, ref string, at time.Time) error {
	from := c.Status
	if err := c.Submit(ref, at); err != nil {
		metrics.IncClaimTransition(string(claims.StatusSubmitted), metrics.ResultError)
		return err
	}
	if err := l.repo.Update(ctx, c, from); err != nil {
		metrics.IncClaimTransition(string(claims.StatusSubmitted), metrics.ResultError)
		return err
	}
	l.changed(ctx, c, from, ref)
	return nil
}

func (l *Lifecycle) transition(ctx context.Context, claimID string, to claims.Status, note string) (*claims.Claim, error) {
	c, err := l.repo.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := l.apply(ctx, c, to, note); err != nil {
		return nil, err
	}
	return c, nil
}

func (l *Lifecycle) apply(ctx context.Context, c *claims.Claim, to claims.Status, note string) error {
	from := c.Status
	if err := c.Transition(to, l.now(), note); err != nil {
		metrics.IncClaimTransition(string(to), metrics.ResultError)
		return err
	}
	if err := l.repo.Update(ctx, c, from); err != nil {
		metrics.IncClaimTransition(string(to), metrics.ResultError)
		return err
	}
	l.changed(ctx, c, from, note)
	return nil
}

func (l *Lifecycle) changed(ctx context.Context, c *claims.Claim, from claims.Status, note string) {
	metrics.IncClaimTransition(string(c.Status), metrics.ResultSuccess)
	l.log.Info("claim status changed", "claim_id", c.ID, "from", from, "to", c.Status)
	if l.publisher == nil {
		return
	}
	err := l.publisher.Publish(ctx, events.ClaimStatusChanged{
		EventID:    eventing.NewEventID(),
		ClaimID:    c.ID,
		From:       string(from),
		To:         string(c.Status),
		Note:       note,
		OccurredAt: c.UpdatedAt,
	})
	if err != nil {
		l.log.Error("publish event failed", "claim_id", c.ID, "error", err)
	}
}
