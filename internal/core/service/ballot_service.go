package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

type ballotService struct {
	ballots    ports.BallotRepository
	voters     ports.VoterRepository
	candidates ports.CandidateRepository
	log        zerolog.Logger
}

// NewBallotService returns the single-ballot ledger.
func NewBallotService(ballots ports.BallotRepository, voters ports.VoterRepository, candidates ports.CandidateRepository, log zerolog.Logger) ports.BallotService {
	return &ballotService{ballots: ballots, voters: voters, candidates: candidates, log: log}
}

// CastVote records the voter's ballot exactly once. The application-level
// has_voted check is a friendly fast path only; the unique index on the
// ballot's voter_id is what guarantees at most one success under concurrency.
func (s *ballotService) CastVote(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
	if voterID == "" || candidateID == "" {
		return nil, domain.ErrInvalidInput
	}

	voter, err := s.voters.FindByID(ctx, voterID)
	if err != nil {
		return nil, err
	}
	if voter.HasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	candidate, err := s.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	ballot := &domain.Ballot{
		ID:            uuid.NewString(),
		VoterID:       voter.ID,
		VoterEmail:    voter.Email,
		CandidateID:   candidate.ID,
		CandidateName: candidate.Name,
		CastAt:        time.Now().UTC(),
	}

	if err := s.ballots.Create(ctx, ballot); err != nil {
		return nil, err
	}

	// The ballot insert is the commit point. A failed flag flip leaves the
	// ledger correct and the flag stale, which the fast path merely stops
	// short-circuiting; never roll the ballot back for it.
	if err := s.voters.MarkVoted(ctx, voter.ID); err != nil && err != domain.ErrAlreadyVoted {
		s.log.Error().Err(err).Str("voter_id", voter.ID).Msg("failed to flip has_voted after ballot insert")
	}

	s.log.Info().
		Str("voter_id", voter.ID).
		Str("candidate_id", candidate.ID).
		Msg("ballot cast")

	return ballot, nil
}

// Tally returns per-candidate vote counts. Pure read over the ballot table,
// always consistent with one ballot per voted voter.
func (s *ballotService) Tally(ctx context.Context) ([]domain.TallyEntry, error) {
	return s.ballots.Tally(ctx)
}

// Results joins the tally with candidate details, sorted by votes descending,
// with percentages over the total and an elected/conceded marker.
func (s *ballotService) Results(ctx context.Context) ([]domain.CandidateResult, error) {
	entries, err := s.ballots.Tally(ctx)
	if err != nil {
		return nil, fmt.Errorf("tally: %w", err)
	}

	counts := make(map[string]int64, len(entries))
	var total int64
	for _, e := range entries {
		counts[e.CandidateID] = e.Votes
		total += e.Votes
	}

	candidates, err := s.candidates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	results := make([]domain.CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		votes := counts[c.ID]
		r := domain.CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			Votes:       votes,
		}
		if total > 0 {
			r.Percentage = math.Round(float64(votes)/float64(total)*1000) / 10
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Votes > results[j].Votes })

	for i := range results {
		if i == 0 && results[i].Votes > 0 {
			results[i].Status = "ELECTED"
		} else {
			results[i].Status = "CONCEDED"
		}
	}

	return results, nil
}
