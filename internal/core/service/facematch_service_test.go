package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

func enrolledVoter(t *testing.T, repo *memVoterRepo, embedding domain.Embedding) *domain.Voter {
	t.Helper()
	created, err := repo.Create(context.Background(), &domain.Voter{
		FirstName:    "Enrolled",
		LastName:     "Voter",
		Email:        "enrolled@example.com",
		Mobile:       "9876543210",
		NationalID:   "123456789012",
		VoterID:      "VOTER-1",
		PasswordHash: "x",
		Role:         domain.RoleVoter,
		Embedding:    embedding,
	})
	if err != nil {
		t.Fatalf("seed voter: %v", err)
	}
	return created
}

func TestFaceMatch_AcceptsBelowThreshold(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, domain.Embedding{1, 0, 0})

	embedder := &stubEmbedder{detections: []ports.Detection{
		{Embedding: domain.Embedding{1, 0.3, 0}}, // distance 0.3
	}}
	svc := NewFaceMatchService(repo, embedder, 0.6, zerolog.Nop())

	res, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !res.Match {
		t.Fatalf("expected match, got reason %q distance %f", res.Reason, res.Distance)
	}
	if math.Abs(res.Distance-0.3) > 1e-9 {
		t.Fatalf("unexpected distance: %f", res.Distance)
	}
}

func TestFaceMatch_RejectsAtThreshold(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, domain.Embedding{1, 0, 0})

	// Distance exactly 0.6: acceptance is strictly-less-than.
	embedder := &stubEmbedder{detections: []ports.Detection{
		{Embedding: domain.Embedding{1, 0.6, 0}},
	}}
	svc := NewFaceMatchService(repo, embedder, 0.6, zerolog.Nop())

	res, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if res.Match {
		t.Fatalf("expected rejection at the threshold, distance %f", res.Distance)
	}
	if res.Reason == "" {
		t.Fatalf("expected a rejection reason")
	}
}

func TestFaceMatch_PicksClosestDetection(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, domain.Embedding{1, 0, 0})

	// A bystander far away plus the voter close by: the closest face decides.
	embedder := &stubEmbedder{detections: []ports.Detection{
		{Embedding: domain.Embedding{0, 1, 1}},
		{Embedding: domain.Embedding{1, 0.1, 0}},
	}}
	svc := NewFaceMatchService(repo, embedder, 0.6, zerolog.Nop())

	res, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !res.Match {
		t.Fatalf("expected match via closest detection, distance %f", res.Distance)
	}
}

func TestFaceMatch_NoFaceInCapture(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, domain.Embedding{1, 0, 0})

	svc := NewFaceMatchService(repo, &stubEmbedder{}, 0.6, zerolog.Nop())

	res, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if res.Match {
		t.Fatalf("expected rejection for empty capture")
	}
	if res.Reason != "no face in live capture" {
		t.Fatalf("unexpected reason: %q", res.Reason)
	}
}

func TestFaceMatch_NotEnrolled(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, nil) // no embedding on record

	svc := NewFaceMatchService(repo, &stubEmbedder{}, 0.6, zerolog.Nop())

	res, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if res.Match || res.Reason != "not enrolled" {
		t.Fatalf("expected 'not enrolled' rejection, got %+v", res)
	}
}

func TestFaceMatch_UnknownVoter(t *testing.T) {
	svc := NewFaceMatchService(newMemVoterRepo(), &stubEmbedder{}, 0.6, zerolog.Nop())

	if _, err := svc.Verify(context.Background(), "missing", []byte("jpeg")); !errors.Is(err, domain.ErrVoterNotFound) {
		t.Fatalf("expected ErrVoterNotFound, got %v", err)
	}
}

func TestFaceMatch_ExtractorFailure(t *testing.T) {
	repo := newMemVoterRepo()
	voter := enrolledVoter(t, repo, domain.Embedding{1, 0, 0})

	embedder := &stubEmbedder{err: errors.New("model offline")}
	svc := NewFaceMatchService(repo, embedder, 0.6, zerolog.Nop())

	if _, err := svc.Verify(context.Background(), voter.ID, []byte("jpeg")); !errors.Is(err, domain.ErrExtractorFailure) {
		t.Fatalf("expected ErrExtractorFailure, got %v", err)
	}
}

func TestEuclidean(t *testing.T) {
	if d := euclidean(domain.Embedding{3, 0}, domain.Embedding{0, 4}); math.Abs(d-5) > 1e-9 {
		t.Fatalf("expected 5, got %f", d)
	}
	if d := euclidean(domain.Embedding{1, 2}, domain.Embedding{1, 2, 3}); !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf for length mismatch, got %f", d)
	}
	if d := euclidean(nil, nil); !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf for empty embeddings, got %f", d)
	}
}
