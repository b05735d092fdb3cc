package claims_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claims "uppf-claims/internal/claims/domain"
)

var allStatuses = []claims.Status{
	claims.StatusDraft,
	claims.StatusReadyToSubmit,
	claims.StatusSubmitted,
	claims.StatusUnderReview,
	claims.StatusApproved,
	claims.StatusRejected,
	claims.StatusSettled,
	claims.StatusCancelled,
}

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]claims.Status]bool{
		{claims.StatusDraft, claims.StatusReadyToSubmit}:     true,
		{claims.StatusDraft, claims.StatusCancelled}:         true,
		{claims.StatusReadyToSubmit, claims.StatusSubmitted}: true,
		{claims.StatusReadyToSubmit, claims.StatusCancelled}: true,
		{claims.StatusSubmitted, claims.StatusUnderReview}:   true,
		{claims.StatusUnderReview, claims.StatusApproved}:    true,
		{claims.StatusUnderReview, claims.StatusRejected}:    true,
		{claims.StatusApproved, claims.StatusSettled}:        true,
		{claims.StatusRejected, claims.StatusDraft}:          true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[[2]claims.Status{from, to}]
			assert.Equal(t, want, claims.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []claims.Status{claims.StatusSettled, claims.StatusCancelled} {
		assert.True(t, from.Terminal())
		for _, to := range allStatuses {
			c := &claims.Claim{ID: "c-1", Status: from}
			err := c.Transition(to, time.Now(), "")
			require.Error(t, err)

			var te *claims.TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, from, te.From)
			assert.Equal(t, to, te.To)
			assert.ErrorIs(t, err, claims.ErrIllegalTransition)
			assert.Equal(t, from, c.Status)
		}
	}
}

func TestClaimLifecycleRecordsHistory(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	c := &claims.Claim{ID: "c-1", Status: claims.StatusReadyToSubmit}

	require.NoError(t, c.Submit("SUB-W1", at))
	require.NoError(t, c.Transition(claims.StatusUnderReview, at.Add(time.Hour), ""))
	require.NoError(t, c.Transition(claims.StatusApproved, at.Add(2*time.Hour), "ok"))
	require.NoError(t, c.Transition(claims.StatusSettled, at.Add(3*time.Hour), ""))

	assert.Equal(t, "SUB-W1", c.SubmissionRef)
	require.NotNil(t, c.SubmittedAt)
	assert.Equal(t, at, *c.SubmittedAt)
	assert.Len(t, c.History, 4)
	assert.Equal(t, claims.StatusSettled, c.Status)
}

func TestClaimCloneIsIndependent(t *testing.T) {
	c := &claims.Claim{ID: "c-1", EvidenceRefs: []string{"WB-1"}}
	cp := c.Clone()
	cp.EvidenceRefs[0] = "changed"
	assert.Equal(t, "WB-1", c.EvidenceRefs[0])
}
