package service

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// MediaStore abstracts the temporary photo intake. The pipeline reads the
// uploaded photo once and removes it on every exit path; only the extracted
// embedding is retained.
type MediaStore interface {
	Read(path string) ([]byte, error)
	Remove(path string) error
}

const (
	minPasswordLength = 8
	mobileDigits      = 10
	nationalIDDigits  = 12
)

type enrollmentService struct {
	voters        ports.VoterRepository
	codes         CodeStore
	embedder      ports.Embedder
	media         MediaStore
	notifier      ports.Notifier
	requireMobile bool
	log           zerolog.Logger
}

// NewEnrollmentService wires the registration pipeline. When requireMobile is
// set, the mobile one-time-code flow must be completed in addition to email.
func NewEnrollmentService(
	voters ports.VoterRepository,
	codes CodeStore,
	embedder ports.Embedder,
	media MediaStore,
	notifier ports.Notifier,
	requireMobile bool,
	log zerolog.Logger,
) ports.EnrollmentService {
	return &enrollmentService{
		voters:        voters,
		codes:         codes,
		embedder:      embedder,
		media:         media,
		notifier:      notifier,
		requireMobile: requireMobile,
		log:           log,
	}
}

// Enroll runs the full pipeline: field validation, uniqueness pre-checks,
// channel-verification proof, embedding extraction, password hashing and a
// single atomic insert. No partial record survives a failure at any step; the
// final insert relies on the store's unique indexes, so a racing duplicate
// enrollment loses there even when both passed the pre-check.
func (s *enrollmentService) Enroll(ctx context.Context, in ports.EnrollmentInput) (*domain.Voter, error) {
	defer func() {
		if in.PhotoPath == "" {
			return
		}
		if err := s.media.Remove(in.PhotoPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", in.PhotoPath).Msg("failed to remove enrollment photo")
		}
	}()

	if err := validateEnrollment(in); err != nil {
		return nil, err
	}

	// Friendly pre-check; the insert below is the authoritative guard.
	if err := s.voters.CheckUnique(ctx, in.Email, in.Mobile, in.NationalID, in.VoterID); err != nil {
		return nil, err
	}

	if err := s.requireVerified(ctx, domain.ChannelEmail, in.Email); err != nil {
		return nil, err
	}
	if s.requireMobile {
		if err := s.requireVerified(ctx, domain.ChannelMobile, in.Mobile); err != nil {
			return nil, err
		}
	}

	photo, err := s.media.Read(in.PhotoPath)
	if err != nil {
		return nil, fmt.Errorf("read enrollment photo: %w", err)
	}

	detections, err := s.embedder.Extract(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	switch {
	case len(detections) == 0:
		return nil, domain.ErrNoFaceDetected
	case len(detections) > 1:
		// Strict policy: refusing ambiguous photos beats enrolling a
		// bystander's face as the reference embedding.
		return nil, domain.ErrMultipleFaces
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	voter := &domain.Voter{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Mobile:       in.Mobile,
		NationalID:   in.NationalID,
		VoterID:      in.VoterID,
		PasswordHash: string(hash),
		Role:         in.Role,
		Gender:       in.Gender,
		DateOfBirth:  in.DateOfBirth,
		Embedding:    detections[0].Embedding,
		HasVoted:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.voters.Create(ctx, voter)
	if err != nil {
		return nil, err
	}

	// Burn the verification markers; the proof of channel control is spent.
	if _, err := s.codes.ConsumeVerified(ctx, domain.ChannelEmail, in.Email); err != nil {
		s.log.Warn().Err(err).Str("email", in.Email).Msg("failed to consume email verification marker")
	}
	if s.requireMobile {
		if _, err := s.codes.ConsumeVerified(ctx, domain.ChannelMobile, in.Mobile); err != nil {
			s.log.Warn().Err(err).Str("mobile", in.Mobile).Msg("failed to consume mobile verification marker")
		}
	}

	// Best effort: a delivery failure never rolls back the enrollment.
	s.notifier.EnqueueEmail(created.Email, "Your Voting Account is Ready", welcomeEmailBody(created.FirstName))

	s.log.Info().
		Str("voter_id", created.VoterID).
		Str("email", created.Email).
		Msg("voter enrolled")

	return created, nil
}

func (s *enrollmentService) requireVerified(ctx context.Context, channel domain.Channel, identifier string) error {
	ok, err := s.codes.IsVerified(ctx, channel, identifier)
	if err != nil {
		return fmt.Errorf("check %s verification: %w", channel, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrChannelNotVerified, channel)
	}
	return nil
}

// validateEnrollment enforces the field rules regardless of which transport
// built the input; the HTTP handler's binding tags are a convenience, not the
// guard.
func validateEnrollment(in ports.EnrollmentInput) error {
	if in.FirstName == "" || in.LastName == "" || in.VoterID == "" || in.PhotoPath == "" ||
		in.DateOfBirth.IsZero() {
		return domain.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.ErrInvalidInput
	}
	if len(in.Password) < minPasswordLength {
		return domain.ErrInvalidInput
	}
	if !digitsOfLen(in.Mobile, mobileDigits) {
		return domain.ErrInvalidInput
	}
	if !digitsOfLen(in.NationalID, nationalIDDigits) {
		return domain.ErrInvalidInput
	}
	if in.Role != domain.RoleVoter && in.Role != domain.RoleAdmin {
		return domain.ErrInvalidInput
	}
	return nil
}

func digitsOfLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func welcomeEmailBody(firstName string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding:20px;">
  <h2>Welcome to the Voting Portal</h2>
  <p>Hello %s,</p>
  <p>Your account has been successfully created on our secure voting platform.</p>
  <p>Please keep your login credentials safe.</p>
</div>`, firstName)
}
