package ports

import (
	"context"
	"time"

	"github.com/securevote/election-system/internal/core/domain"
)

// EnrollmentInput carries a validated registration request into the pipeline.
// PhotoPath points at the temporary copy of the uploaded photo; the pipeline
// removes it on every exit path.
type EnrollmentInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        string
	Gender      string
	DateOfBirth time.Time
	NationalID  string
	Mobile      string
	VoterID     string
	PhotoPath   string
}

// EnrollmentService runs the one-time registration pipeline.
type EnrollmentService interface {
	Enroll(ctx context.Context, in EnrollmentInput) (*domain.Voter, error)
}

// AuthService authenticates enrolled voters and admins.
type AuthService interface {
	Login(ctx context.Context, email, password, role string) (string, *domain.Voter, error)
}

// CodeService issues and verifies one-time codes for a channel identifier.
type CodeService interface {
	Issue(ctx context.Context, channel domain.Channel, identifier string) error
	// Verify consumes the live code on success (single use). Failure returns
	// domain.ErrNoActiveCode or domain.ErrInvalidCode; a mismatch leaves the
	// code live until its TTL runs out.
	Verify(ctx context.Context, channel domain.Channel, identifier, code string) error
}

// MatchResult is the outcome of a face verification.
type MatchResult struct {
	Match    bool
	Distance float64
	Reason   string
}

// FaceMatchService compares a live capture against a voter's enrolled
// embedding. Read-only; no ordering requirement relative to other calls.
type FaceMatchService interface {
	Verify(ctx context.Context, voterID string, liveImage []byte) (MatchResult, error)
}

// BallotService is the single-ballot ledger.
type BallotService interface {
	CastVote(ctx context.Context, voterID, candidateID string) (*domain.Ballot, error)
	Tally(ctx context.Context) ([]domain.TallyEntry, error)
	// Results joins the tally with candidate details, sorted by votes.
	Results(ctx context.Context) ([]domain.CandidateResult, error)
}

// CandidateInput carries the fields for a new ballot option.
type CandidateInput struct {
	Name        string
	Party       string
	Email       string
	Mobile      string
	Agenda      string
	Photo       domain.ImageBlob
	PartySymbol domain.ImageBlob
}

// CandidateService manages ballot options (admin surface).
type CandidateService interface {
	Add(ctx context.Context, in CandidateInput) (*domain.Candidate, error)
	Get(ctx context.Context, id string) (*domain.Candidate, error)
	List(ctx context.Context) ([]*domain.Candidate, error)
	Remove(ctx context.Context, id string) error
}
