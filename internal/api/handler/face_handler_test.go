package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

type stubFaceMatchService struct {
	verifyFn func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error)
}

func (s *stubFaceMatchService) Verify(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
	return s.verifyFn(ctx, voterID, liveImage)
}

func TestFaceHandler_Verify_Match(t *testing.T) {
	image := []byte("jpeg-bytes")
	stub := &stubFaceMatchService{
		verifyFn: func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
			if voterID != "v1" || string(liveImage) != string(image) {
				t.Fatalf("unexpected args: %s %q", voterID, liveImage)
			}
			return ports.MatchResult{Match: true, Distance: 0.31}, nil
		},
	}
	h := NewFaceHandler(stub)

	body, _ := json.Marshal(map[string]string{
		"voter_id": "v1",
		"image":    base64.StdEncoding.EncodeToString(image),
	})
	c, rec := jsonContext(http.MethodPost, "/face/verify", string(body))

	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["match"] != true {
		t.Fatalf("expected match, got %+v", resp)
	}
}

func TestFaceHandler_Verify_DataURLPrefix(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff}
	stub := &stubFaceMatchService{
		verifyFn: func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
			if string(liveImage) != string(image) {
				t.Fatalf("data URL prefix not stripped: %q", liveImage)
			}
			return ports.MatchResult{Match: true, Distance: 0.2}, nil
		},
	}
	h := NewFaceHandler(stub)

	body, _ := json.Marshal(map[string]string{
		"voter_id": "v1",
		"image":    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
	})
	c, rec := jsonContext(http.MethodPost, "/face/verify", string(body))

	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestFaceHandler_Verify_NoMatchCarriesReason(t *testing.T) {
	stub := &stubFaceMatchService{
		verifyFn: func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
			return ports.MatchResult{Match: false, Distance: 0.82, Reason: "face does not match enrolled voter"}, nil
		},
	}
	h := NewFaceHandler(stub)

	body, _ := json.Marshal(map[string]string{
		"voter_id": "v1",
		"image":    base64.StdEncoding.EncodeToString([]byte("x")),
	})
	c, rec := jsonContext(http.MethodPost, "/face/verify", string(body))

	if err := h.Verify(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["match"] != false || resp["reason"] != "face does not match enrolled voter" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestFaceHandler_Verify_BadBase64(t *testing.T) {
	stub := &stubFaceMatchService{
		verifyFn: func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
			t.Fatalf("service must not be called with an undecodable image")
			return ports.MatchResult{}, nil
		},
	}
	h := NewFaceHandler(stub)

	c, _ := jsonContext(http.MethodPost, "/face/verify", `{"voter_id":"v1","image":"%%%not-base64%%%"}`)

	if code := httpErrorCode(t, h.Verify(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestFaceHandler_Verify_ExtractorDown(t *testing.T) {
	stub := &stubFaceMatchService{
		verifyFn: func(ctx context.Context, voterID string, liveImage []byte) (ports.MatchResult, error) {
			return ports.MatchResult{}, domain.ErrExtractorFailure
		},
	}
	h := NewFaceHandler(stub)

	body, _ := json.Marshal(map[string]string{
		"voter_id": "v1",
		"image":    base64.StdEncoding.EncodeToString([]byte("x")),
	})
	c, _ := jsonContext(http.MethodPost, "/face/verify", string(body))

	if err := h.Verify(c); !errors.Is(err, domain.ErrExtractorFailure) {
		t.Fatalf("expected ErrExtractorFailure, got %v", err)
	}
}
