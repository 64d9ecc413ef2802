package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// DefaultMatchThreshold is the maximum embedding distance at which a live
// capture is accepted as the enrolled voter. Tunable policy, not a
// correctness guarantee: false accepts and false rejects are possible by
// design, and no liveness check is performed.
const DefaultMatchThreshold = 0.6

type faceMatchService struct {
	voters    ports.VoterRepository
	embedder  ports.Embedder
	threshold float64
	log       zerolog.Logger
}

// NewFaceMatchService returns a FaceMatchService using the given acceptance
// threshold; values <= 0 fall back to DefaultMatchThreshold.
func NewFaceMatchService(voters ports.VoterRepository, embedder ports.Embedder, threshold float64, log zerolog.Logger) ports.FaceMatchService {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	return &faceMatchService{voters: voters, embedder: embedder, threshold: threshold, log: log}
}

// Verify is read-only with respect to the identity store: it never mutates
// voter state and carries no ordering requirement relative to other calls.
func (s *faceMatchService) Verify(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
	voter, err := s.voters.FindByID(ctx, voterID)
	if err != nil {
		return ports.MatchResult{}, err
	}
	if !voter.Enrolled() {
		return ports.MatchResult{Reason: "not enrolled"}, nil
	}

	detections, err := s.embedder.Extract(ctx, liveImage)
	if err != nil {
		if errors.Is(err, domain.ErrExtractorFailure) {
			return ports.MatchResult{}, err
		}
		return ports.MatchResult{}, fmt.Errorf("%w: %v", domain.ErrExtractorFailure, err)
	}
	if len(detections) == 0 {
		return ports.MatchResult{Reason: "no face in live capture"}, nil
	}

	// The capture may contain bystanders; the voter matches if any detected
	// face is close enough to the enrolled embedding.
	best := math.Inf(1)
	for _, d := range detections {
		if dist := euclidean(voter.Embedding, d.Embedding); dist < best {
			best = dist
		}
	}

	result := ports.MatchResult{Match: best < s.threshold, Distance: best}
	if !result.Match {
		result.Reason = "face does not match enrolled voter"
	}

	s.log.Info().
		Str("voter_id", voterID).
		Float64("distance", best).
		Bool("match", result.Match).
		Msg("face verification")

	return result, nil
}

// euclidean returns the L2 distance between two embeddings, or +Inf when the
// vectors are not comparable (length mismatch).
func euclidean(a, b domain.Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
