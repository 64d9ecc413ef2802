package ports

import (
	"context"

	"github.com/securevote/election-system/internal/core/domain"
)

// BallotRepository defines persistence for cast ballots.
type BallotRepository interface {
	// Create inserts the ballot. The voter_id unique index makes this the
	// authoritative single-vote gate: a second insert for the same voter
	// returns domain.ErrAlreadyVoted regardless of timing.
	Create(ctx context.Context, ballot *domain.Ballot) error
	FindByVoterID(ctx context.Context, voterID string) (*domain.Ballot, error)
	// Tally returns per-candidate vote counts. Pure read.
	Tally(ctx context.Context) ([]domain.TallyEntry, error)
}
