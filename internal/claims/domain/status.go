package claims

// Status is the lifecycle state of a claim.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusReadyToSubmit Status = "ready_to_submit"
	StatusSubmitted     Status = "submitted"
	StatusUnderReview   Status = "under_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
	StatusSettled       Status = "settled"
	StatusCancelled     Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:         {StatusReadyToSubmit, StatusCancelled},
	StatusReadyToSubmit: {StatusSubmitted, StatusCancelled},
	StatusSubmitted:     {StatusUnderReview},
	StatusUnderReview:   {StatusApproved, StatusRejected},
	StatusApproved:      {StatusSettled},
	StatusRejected:      {StatusDraft},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusSettled || s == StatusCancelled
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReadyToSubmit, StatusSubmitted, StatusUnderReview,
		StatusApproved, StatusRejected, StatusSettled, StatusCancelled:
		return true
	default:
		return false
	}
}
