package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

type stubBallotService struct {
	castFn    func(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error)
	tallyFn   func(ctx context.Context) ([]domain.TallyEntry, error)
	resultsFn func(ctx context.Context) ([]domain.CandidateResult, error)
}

func (s *stubBallotService) CastVote(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
	return s.castFn(ctx, voterID, candidateID)
}

func (s *stubBallotService) Tally(ctx context.Context) ([]domain.TallyEntry, error) {
	return s.tallyFn(ctx)
}

func (s *stubBallotService) Results(ctx context.Context) ([]domain.CandidateResult, error) {
	return s.resultsFn(ctx)
}

func TestVoteHandler_CastVote_Success(t *testing.T) {
	stub := &stubBallotService{
		castFn: func(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
			if voterID != "v1" || candidateID != "c1" {
				t.Fatalf("unexpected args: %s %s", voterID, candidateID)
			}
			return &domain.Ballot{
				VoterID:     voterID,
				CandidateID: candidateID,
				CastAt:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	h := NewVoteHandler(stub)

	c, rec := jsonContext(http.MethodPost, "/votes", `{"candidate_id":"c1"}`)
	c.Set("sub", "v1")
	c.Set("role", domain.RoleVoter)

	if err := h.CastVote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["accepted"] != true || resp["candidate_id"] != "c1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestVoteHandler_CastVote_MissingClaims(t *testing.T) {
	stub := &stubBallotService{
		castFn: func(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
			t.Fatalf("service must not be called without claims")
			return nil, nil
		},
	}
	h := NewVoteHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/votes", `{"candidate_id":"c1"}`)

	if code := httpErrorCode(t, h.CastVote(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestVoteHandler_CastVote_AlreadyVoted(t *testing.T) {
	stub := &stubBallotService{
		castFn: func(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
			return nil, domain.ErrAlreadyVoted
		},
	}
	h := NewVoteHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/votes", `{"candidate_id":"c1"}`)
	c.Set("sub", "v1")
	c.Set("role", domain.RoleVoter)

	if err := h.CastVote(c); !errors.Is(err, domain.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestVoteHandler_CastVote_MissingCandidate(t *testing.T) {
	stub := &stubBallotService{
		castFn: func(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error) {
			t.Fatalf("service must not be called on validation failure")
			return nil, nil
		},
	}
	h := NewVoteHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/votes", `{}`)
	c.Set("sub", "v1")
	c.Set("role", domain.RoleVoter)

	if code := httpErrorCode(t, h.CastVote(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestVoteHandler_Tally_EmptyLedger(t *testing.T) {
	stub := &stubBallotService{
		tallyFn: func(ctx context.Context) ([]domain.TallyEntry, error) { return nil, nil },
	}
	h := NewVoteHandler(stub)

	c, rec := jsonContext(http.MethodGet, "/votes/tally", "")

	if err := h.Tally(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	// An empty ledger renders as [], never null.
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestVoteHandler_Results(t *testing.T) {
	stub := &stubBallotService{
		resultsFn: func(ctx context.Context) ([]domain.CandidateResult, error) {
			return []domain.CandidateResult{
				{CandidateID: "c1", Name: "Jane Roe", Votes: 3, Percentage: 75, Status: "ELECTED"},
				{CandidateID: "c2", Name: "John Doe", Votes: 1, Percentage: 25, Status: "CONCEDED"},
			}, nil
		},
	}
	h := NewVoteHandler(stub)

	c, rec := jsonContext(http.MethodGet, "/results", "")

	if err := h.Results(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0]["status"] != "ELECTED" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

var _ ports.BallotService = (*stubBallotService)(nil)
