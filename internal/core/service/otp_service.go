package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// CodeStore abstracts the one-time-code store (Redis).
//
// Put replaces any live code for the same channel identifier and arms the TTL.
// Consume is the single-use verification: it deletes the code only when the
// submitted value matches, atomically with respect to concurrent callers.
type CodeStore interface {
	Put(ctx context.Context, channel domain.Channel, identifier, code string, ttl time.Duration) error
	// Consume returns nil and deletes the code on a match,
	// domain.ErrNoActiveCode when nothing is live for the identifier, and
	// domain.ErrInvalidCode on a mismatch (the code stays live).
	Consume(ctx context.Context, channel domain.Channel, identifier, code string) error
	MarkVerified(ctx context.Context, channel domain.Channel, identifier string, ttl time.Duration) error
	IsVerified(ctx context.Context, channel domain.Channel, identifier string) (bool, error)
	ConsumeVerified(ctx context.Context, channel domain.Channel, identifier string) (bool, error)
}

const codeLength = 6

type codeService struct {
	store    CodeStore
	voters   ports.VoterRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewCodeService returns a CodeService backed by store, delivering codes
// through notifier.
func NewCodeService(store CodeStore, voters ports.VoterRepository, notifier ports.Notifier, log zerolog.Logger) ports.CodeService {
	return &codeService{store: store, voters: voters, notifier: notifier, log: log}
}

// Issue generates a fresh numeric code for the channel identifier, replacing
// any previous one, and dispatches it out-of-band.
func (s *codeService) Issue(ctx context.Context, channel domain.Channel, identifier string) error {
	if identifier == "" {
		return domain.ErrInvalidInput
	}

	// Refuse to start a verification flow for an email that already belongs
	// to an enrolled voter; the enrollment would fail on uniqueness anyway.
	if channel == domain.ChannelEmail {
		if err := s.voters.CheckUnique(ctx, identifier, "", "", ""); err != nil {
			return err
		}
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if err := s.store.Put(ctx, channel, identifier, code, domain.CodeTTL); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	switch channel {
	case domain.ChannelMobile:
		s.notifier.EnqueueSMS(identifier, fmt.Sprintf("Your voting portal verification code is %s. It is valid for 5 minutes.", code))
	default:
		s.notifier.EnqueueEmail(identifier, "Voting Portal: Email Verification Code", verificationEmailBody(code))
	}

	s.log.Info().Str("channel", string(channel)).Str("identifier", identifier).Msg("one-time code issued")
	return nil
}

// Verify consumes the live code for the identifier. On success a verified
// marker is written so the enrollment pipeline can require proof of channel
// control without re-running the flow.
func (s *codeService) Verify(ctx context.Context, channel domain.Channel, identifier, code string) error {
	if identifier == "" || code == "" {
		return domain.ErrInvalidInput
	}

	if err := s.store.Consume(ctx, channel, identifier, code); err != nil {
		return err
	}

	if err := s.store.MarkVerified(ctx, channel, identifier, domain.VerifiedTTL); err != nil {
		// The code is already burnt; losing the marker forces the user to
		// restart the flow, which is safe but worth surfacing.
		return fmt.Errorf("mark %s verified: %w", channel, err)
	}

	s.log.Info().Str("channel", string(channel)).Str("identifier", identifier).Msg("channel verified")
	return nil
}

// generateCode returns a uniformly random fixed-length numeric code.
func generateCode() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(b[:]) % 1_000_000
	return fmt.Sprintf("%0*d", codeLength, n), nil
}

func verificationEmailBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
  <h2>Email Verification</h2>
  <p>Please use the following %d-digit code to verify your email address:</p>
  <h3 style="background: #f4f4f4; padding: 15px; text-align: center; letter-spacing: 5px;">%s</h3>
  <p>This code is valid for 5 minutes.</p>
</div>`, codeLength, code)
}
