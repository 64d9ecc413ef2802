package ports

import (
	"context"

	"github.com/securevote/election-system/internal/core/domain"
)

// CandidateRepository defines persistence for ballot options.
type CandidateRepository interface {
	Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error)
	FindByID(ctx context.Context, id string) (*domain.Candidate, error)
	List(ctx context.Context) ([]*domain.Candidate, error)
	Delete(ctx context.Context, id string) error
}
