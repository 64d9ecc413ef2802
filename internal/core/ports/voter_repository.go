package ports

import (
	"context"

	"github.com/securevote/election-system/internal/core/domain"
)

// VoterRepository defines persistence operations for enrolled voters.
//
// Uniqueness of email, mobile, national ID and voter ID is enforced by the
// store itself (unique indexes); Create surfaces the specific per-field
// conflict sentinel when an insert loses that race. CheckUnique exists only as
// a fast, user-friendly pre-check and must never be the sole guard.
type VoterRepository interface {
	Create(ctx context.Context, voter *domain.Voter) (*domain.Voter, error)
	FindByID(ctx context.Context, id string) (*domain.Voter, error)
	// FindByEmailAndRole scopes the lookup by role so the same email cannot
	// authenticate against a surface its record was not enrolled for.
	FindByEmailAndRole(ctx context.Context, email, role string) (*domain.Voter, error)
	// CheckUnique returns the first per-field conflict sentinel among the
	// supplied identity fields, or nil when all are free.
	CheckUnique(ctx context.Context, email, mobile, nationalID, voterID string) error
	// MarkVoted flips has_voted false→true as a compare-and-swap. It returns
	// domain.ErrAlreadyVoted when the flag was already set and
	// domain.ErrVoterNotFound when no such voter exists.
	MarkVoted(ctx context.Context, id string) error
}
