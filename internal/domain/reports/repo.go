package reports

import (
	"context"

	"github.com/google/uuid"
)

// Repository scopes every read and write by author: a report another user
// owns behaves as if it does not exist.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id, authorID uuid.UUID) (*Report, error)
	Update(ctx context.Context, r *Report) error
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Report, int, error)

	// UpsertFeedback creates the report's feedback row or overwrites it,
	// resetting the flag.
	UpsertFeedback(ctx context.Context, f *Feedback) error
	GetFeedbackByID(ctx context.Context, id, authorID uuid.UUID) (*Feedback, error)
	ListFeedbackByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*Feedback, int, error)
	FlagFeedback(ctx context.Context, id, authorID uuid.UUID) error
}
