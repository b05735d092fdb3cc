package settlement

import "context"

// Repository persists settlements. Save inserts a new settlement; Update
// rewrites status and payment fields of an existing one.
type Repository interface {
	Save(ctx context.Context, s *Settlement) error
	Update(ctx context.Context, s *Settlement) error
	Get(ctx context.Context, id string) (*Settlement, error)
	FindByWindow(ctx context.Context, windowID string) (*Settlement, error)
	NextSequence(ctx context.Context, month string) (int64, error)
}
