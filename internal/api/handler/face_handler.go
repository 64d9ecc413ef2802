package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/securevote/election-system/internal/api/metrics"
	"github.com/securevote/election-system/internal/core/ports"
)

// FaceHandler exposes the live-capture verification endpoint.
type FaceHandler struct {
	matcher ports.FaceMatchService
}

func NewFaceHandler(matcher ports.FaceMatchService) *FaceHandler {
	return &FaceHandler{matcher: matcher}
}

type verifyFaceRequest struct {
	VoterID string `json:"voter_id" validate:"required"`
	// Image is the live capture, base64-encoded, with or without a data URL
	// prefix ("data:image/jpeg;base64,...").
	Image string `json:"image" validate:"required"`
}

type verifyFaceResponse struct {
	Match  bool   `json:"match"`
	Reason string `json:"reason,omitempty"`
}

// Verify compares a live capture against the voter's enrolled embedding.
// Read-only: a match here authorizes nothing by itself; casting still goes
// through the ballot ledger.
//
// @Summary      Verify a voter's face
// @Tags         face
// @Accept       json
// @Produce      json
// @Param        body  body      verifyFaceRequest  true  "Voter and live capture"
// @Success      200   {object}  verifyFaceResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /face/verify [post]
func (h *FaceHandler) Verify(c echo.Context) error {
	var req verifyFaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image must be base64 encoded")
	}

	result, err := h.matcher.Verify(c.Request().Context(), req.VoterID, image)
	if err != nil {
		metrics.FaceVerificationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.FaceVerificationsTotal.WithLabelValues(faceOutcome(result)).Inc()
	if result.Distance > 0 {
		metrics.FaceMatchDistance.Observe(result.Distance)
	}

	return c.JSON(http.StatusOK, verifyFaceResponse{Match: result.Match, Reason: result.Reason})
}

// decodeImage strips an optional data URL prefix and decodes the payload.
func decodeImage(s string) ([]byte, error) {
	if idx := strings.Index(s, ","); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

func faceOutcome(r ports.MatchResult) string {
	switch {
	case r.Match:
		return "match"
	case r.Reason == "not enrolled":
		return "not_enrolled"
	case r.Reason == "no face in live capture":
		return "no_face"
	default:
		return "no_match"
	}
}
