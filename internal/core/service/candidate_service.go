package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

type candidateService struct {
	candidates ports.CandidateRepository
	log        zerolog.Logger
}

// NewCandidateService returns the admin-facing candidate registry.
func NewCandidateService(candidates ports.CandidateRepository, log zerolog.Logger) ports.CandidateService {
	return &candidateService{candidates: candidates, log: log}
}

func (s *candidateService) Add(ctx context.Context, in ports.CandidateInput) (*domain.Candidate, error) {
	if in.Name == "" || in.Party == "" || len(in.Photo.Data) == 0 || len(in.PartySymbol.Data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	candidate := &domain.Candidate{
		Name:        in.Name,
		Party:       in.Party,
		Email:       in.Email,
		Mobile:      in.Mobile,
		Agenda:      in.Agenda,
		Photo:       in.Photo,
		PartySymbol: in.PartySymbol,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.candidates.Create(ctx, candidate)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("candidate_id", created.ID).Str("party", created.Party).Msg("candidate added")
	return created, nil
}

func (s *candidateService) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	return s.candidates.FindByID(ctx, id)
}

func (s *candidateService) List(ctx context.Context) ([]*domain.Candidate, error) {
	return s.candidates.List(ctx)
}

func (s *candidateService) Remove(ctx context.Context, id string) error {
	if err := s.candidates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("candidate_id", id).Msg("candidate removed")
	return nil
}
