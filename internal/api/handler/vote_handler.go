package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securevote/election-system/internal/api/metrics"
	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// VoteHandler exposes ballot casting and tallying.
type VoteHandler struct {
	ballots ports.BallotService
}

func NewVoteHandler(ballots ports.BallotService) *VoteHandler {
	return &VoteHandler{ballots: ballots}
}

type castVoteRequest struct {
	CandidateID string `json:"candidate_id" validate:"required"`
}

type castVoteResponse struct {
	Accepted    bool   `json:"accepted"`
	CandidateID string `json:"candidate_id"`
	CastAt      string `json:"cast_at"`
}

// CastVote records the authenticated voter's single ballot.
//
// @Summary      Cast a vote
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        body  body      castVoteRequest  true  "Chosen candidate"
// @Success      201   {object}  castVoteResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /votes [post]
func (h *VoteHandler) CastVote(c echo.Context) error {
	voterID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ballot, err := h.ballots.CastVote(c.Request().Context(), voterID, req.CandidateID)
	if err != nil {
		metrics.VotesCastTotal.WithLabelValues(voteOutcome(err)).Inc()
		return err
	}

	metrics.VotesCastTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusCreated, castVoteResponse{
		Accepted:    true,
		CandidateID: ballot.CandidateID,
		CastAt:      ballot.CastAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Tally returns raw per-candidate vote counts.
//
// @Summary      Tally votes
// @Tags         votes
// @Produce      json
// @Success      200  {array}  domain.TallyEntry
// @Router       /votes/tally [get]
func (h *VoteHandler) Tally(c echo.Context) error {
	entries, err := h.ballots.Tally(c.Request().Context())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.TallyEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Results returns the tally joined with candidate details, sorted by votes.
//
// @Summary      Election results
// @Tags         votes
// @Produce      json
// @Success      200  {array}  domain.CandidateResult
// @Router       /results [get]
func (h *VoteHandler) Results(c echo.Context) error {
	results, err := h.ballots.Results(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

func voteOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrVoterNotFound), errors.Is(err, domain.ErrCandidateNotFound):
		return "not_found"
	default:
		return "error"
	}
}
