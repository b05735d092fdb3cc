package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uppf-claims/internal/claims/application"
	"uppf-claims/internal/claims/application/events"
	mock_application "uppf-claims/internal/claims/application/mocks"
	claims "uppf-claims/internal/claims/domain"
)

var reviewedAt = time.Date(2026, 3, 31, 17, 0, 0, 0, time.UTC)

func newLifecycle(t *testing.T) (*application.Lifecycle, *mock_application.MockClaimRepository, *mock_application.MockEventPublisher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock_application.NewMockClaimRepository(ctrl)
	pub := mock_application.NewMockEventPublisher(ctrl)
	l, err := application.NewLifecycle(repo, pub, nil, func() time.Time { return reviewedAt })
	require.NoError(t, err)
	return l, repo, pub
}

func TestSubmitWindow(t *testing.T) {
	l, repo, pub := newLifecycle(t)
	ctx := context.Background()

	ready := []*claims.Claim{
		{ID: "c-2", WindowID: "W1", Status: claims.StatusReadyToSubmit},
		{ID: "c-1", WindowID: "W1", Status: claims.StatusReadyToSubmit},
	}
	repo.EXPECT().ListByStatus(ctx, claims.StatusDraft, "W1").Return([]*claims.Claim{{ID: "c-3", Status: claims.StatusDraft}}, nil)
	repo.EXPECT().ListByStatus(ctx, claims.StatusRejected, "W1").Return(nil, nil)
	repo.EXPECT().ListByStatus(ctx, claims.StatusReadyToSubmit, "W1").Return(ready, nil)
	repo.EXPECT().Update(ctx, gomock.Any(), claims.StatusReadyToSubmit).Return(nil).Times(2)
	pub.EXPECT().Publish(ctx, gomock.AssignableToTypeOf(events.ClaimStatusChanged{})).Return(nil).Times(2)

	summary, err := l.SubmitWindow(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-2"}, summary.Submitted)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "c-3", summary.Skipped[0].ClaimID)
	assert.Equal(t, "SUB-W1-20260331170000", summary.Reference)

	for _, c := range ready {
		assert.Equal(t, claims.StatusSubmitted, c.Status)
		assert.Equal(t, summary.Reference, c.SubmissionRef)
		require.NotNil(t, c.SubmittedAt)
	}
}

func TestSubmitWindowStaleClaimIsSkipped(t *testing.T) {
	l, repo, _ := newLifecycle(t)
	ctx := context.Background()

	repo.EXPECT().ListByStatus(ctx, gomock.Any(), "W1").Return(nil, nil).Times(2)
	repo.EXPECT().ListByStatus(ctx, claims.StatusReadyToSubmit, "W1").Return([]*claims.Claim{{ID: "c-1", Status: claims.StatusReadyToSubmit}}, nil)
	repo.EXPECT().Update(ctx, gomock.Any(), claims.StatusReadyToSubmit).Return(claims.ErrStaleClaim)

	summary, err := l.SubmitWindow(ctx, "W1")
	require.NoError(t, err)
	assert.Empty(t, summary.Submitted)
	require.Len(t, summary.Skipped, 1)
	assert.Contains(t, summary.Skipped[0].Reason, "modified concurrently")
}

func TestSweepAutoSubmitOnlyTakesAutoDisposition(t *testing.T) {
	l, repo, pub := newLifecycle(t)
	ctx := context.Background()

	auto := &claims.Claim{ID: "auto", WindowID: "W1", Status: claims.StatusReadyToSubmit, Disposition: claims.DispositionAutoSubmit}
	manual := &claims.Claim{ID: "ready", WindowID: "W1", Status: claims.StatusReadyToSubmit, Disposition: claims.DispositionReadyToSubmit}
	repo.EXPECT().ListByStatus(ctx, claims.StatusReadyToSubmit, "").Return([]*claims.Claim{auto, manual}, nil)
	repo.EXPECT().Update(ctx, auto, claims.StatusReadyToSubmit).Return(nil)
	pub.EXPECT().Publish(ctx, gomock.Any()).Return(nil)

	submitted, err := l.SweepAutoSubmit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto"}, submitted)
	assert.Equal(t, claims.StatusReadyToSubmit, manual.Status)
}

func TestReviewTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    claims.Status
		act     func(*application.Lifecycle) (*claims.Claim, error)
		want    claims.Status
		wantErr bool
	}{
		{
			name: "start review",
			from: claims.StatusSubmitted,
			act:  func(l *application.Lifecycle) (*claims.Claim, error) { return l.StartReview(context.Background(), "c-1") },
			want: claims.StatusUnderReview,
		},
		{
			name: "approve",
			from: claims.StatusUnderReview,
			act: func(l *application.Lifecycle) (*claims.Claim, error) {
				return l.Review(context.Background(), "c-1", true, "ok")
			},
			want: claims.StatusApproved,
		},
		{
			name: "reject",
			from: claims.StatusUnderReview,
			act: func(l *application.Lifecycle) (*claims.Claim, error) {
				return l.Review(context.Background(), "c-1", false, "missing waybill")
			},
			want: claims.StatusRejected,
		},
		{
			name: "reopen",
			from: claims.StatusRejected,
			act:  func(l *application.Lifecycle) (*claims.Claim, error) { return l.Reopen(context.Background(), "c-1", "") },
			want: claims.StatusDraft,
		},
		{
			name: "promote draft",
			from: claims.StatusDraft,
			act:  func(l *application.Lifecycle) (*claims.Claim, error) { return l.Ready(context.Background(), "c-1", "") },
			want: claims.StatusReadyToSubmit,
		},
		{
			name:    "cannot cancel approved",
			from:    claims.StatusApproved,
			act:     func(l *application.Lifecycle) (*claims.Claim, error) { return l.Cancel(context.Background(), "c-1", "") },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, repo, pub := newLifecycle(t)
			repo.EXPECT().Get(gomock.Any(), "c-1").Return(&claims.Claim{ID: "c-1", Status: tt.from}, nil)
			if !tt.wantErr {
				repo.EXPECT().Update(gomock.Any(), gomock.Any(), tt.from).Return(nil)
				pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e any) error {
					changed := e.(events.ClaimStatusChanged)
					assert.Equal(t, string(tt.from), changed.From)
					assert.Equal(t, string(tt.want), changed.To)
					return nil
				})
			}

			got, err := tt.act(l)
			if tt.wantErr {
				assert.ErrorIs(t, err, claims.ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, reviewedAt, got.UpdatedAt)
		})
	}
}

func TestMarkSettledContinuesPastFailures(t *testing.T) {
	l, repo, pub := newLifecycle(t)
	ctx := context.Background()
	ref := "UPPF-SETTLEMENT-202603-0001"

	first := &claims.Claim{ID: "c-1", Status: claims.StatusApproved}
	third := &claims.Claim{ID: "c-3", Status: claims.StatusApproved}
	repo.EXPECT().Get(ctx, "c-1").Return(first, nil)
	repo.EXPECT().Get(ctx, "c-2").Return(&claims.Claim{ID: "c-2", Status: claims.StatusDraft}, nil)
	repo.EXPECT().Get(ctx, "c-3").Return(third, nil)
	repo.EXPECT().Get(ctx, "c-4").Return(&claims.Claim{ID: "c-4", Status: claims.StatusSettled}, nil)
	repo.EXPECT().Update(ctx, gomock.Any(), claims.StatusApproved).Return(nil).Times(2)
	pub.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(2)

	err := l.MarkSettled(ctx, []string{"c-1", "c-2", "c-3", "c-4"}, ref)
	assert.ErrorIs(t, err, claims.ErrIllegalTransition)
	assert.ErrorContains(t, err, "claim c-2")
	assert.Equal(t, claims.StatusSettled, first.Status)
	assert.Equal(t, claims.StatusSettled, third.Status)
}

func TestMarkSettledSkipsSettledClaims(t *testing.T) {
	l, repo, _ := newLifecycle(t)
	ctx := context.Background()

	repo.EXPECT().Get(ctx, "c-1").Return(&claims.Claim{ID: "c-1", Status: claims.StatusSettled}, nil)

	assert.NoError(t, l.MarkSettled(ctx, []string{"c-1"}, "UPPF-SETTLEMENT-202603-0001"))
}
