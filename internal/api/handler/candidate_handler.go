package handler

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// CandidateHandler exposes the admin candidate registry.
type CandidateHandler struct {
	candidates ports.CandidateService
}

func NewCandidateHandler(candidates ports.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

type candidateForm struct {
	Name   string `form:"name"   validate:"required"`
	Party  string `form:"party"  validate:"required"`
	Email  string `form:"email"  validate:"omitempty,email"`
	Mobile string `form:"mobile" validate:"omitempty,len=10,numeric"`
	Agenda string `form:"agenda"`
}

type candidateView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Email       string `json:"email,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
	Agenda      string `json:"agenda,omitempty"`
	Photo       string `json:"photo,omitempty"`
	PartySymbol string `json:"party_symbol,omitempty"`
}

// Add registers a candidate with a photo and party symbol (admin only).
//
// @Summary      Add a candidate
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        photo        formData  file  true  "Candidate photo"
// @Param        party_symbol formData  file  true  "Party symbol"
// @Success      201  {object}  candidateView
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Security     BearerAuth
// @Router       /candidates [post]
func (h *CandidateHandler) Add(c echo.Context) error {
	var form candidateForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	photo, err := readImageFile(c, "photo")
	if err != nil {
		return err
	}
	symbol, err := readImageFile(c, "party_symbol")
	if err != nil {
		return err
	}

	created, err := h.candidates.Add(c.Request().Context(), ports.CandidateInput{
		Name:        form.Name,
		Party:       form.Party,
		Email:       form.Email,
		Mobile:      form.Mobile,
		Agenda:      form.Agenda,
		Photo:       photo,
		PartySymbol: symbol,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toCandidateView(created))
}

// List returns all candidates with inline images.
//
// @Summary      List candidates
// @Tags         candidates
// @Produce      json
// @Success      200  {array}  candidateView
// @Router       /candidates [get]
func (h *CandidateHandler) List(c echo.Context) error {
	candidates, err := h.candidates.List(c.Request().Context())
	if err != nil {
		return err
	}

	views := make([]candidateView, 0, len(candidates))
	for _, cand := range candidates {
		views = append(views, toCandidateView(cand))
	}
	return c.JSON(http.StatusOK, views)
}

// Get returns a single candidate.
//
// @Summary      Get a candidate
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  candidateView
// @Failure      404  {object}  errorResponse
// @Router       /candidates/{id} [get]
func (h *CandidateHandler) Get(c echo.Context) error {
	candidate, err := h.candidates.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCandidateView(candidate))
}

// Remove deletes a candidate (admin only).
//
// @Summary      Remove a candidate
// @Tags         candidates
// @Param        id  path  string  true  "Candidate ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /candidates/{id} [delete]
func (h *CandidateHandler) Remove(c echo.Context) error {
	if err := h.candidates.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

const maxImageBytes = 5 << 20

func readImageFile(c echo.Context, field string) (domain.ImageBlob, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return domain.ImageBlob{}, echo.NewHTTPError(http.StatusBadRequest, field+" file is required")
	}
	if fh.Size > maxImageBytes {
		return domain.ImageBlob{}, echo.NewHTTPError(http.StatusBadRequest, field+" exceeds the size limit")
	}

	src, err := fh.Open()
	if err != nil {
		return domain.ImageBlob{}, echo.NewHTTPError(http.StatusBadRequest, "cannot read "+field)
	}
	defer func(src multipart.File) { _ = src.Close() }(src)

	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes))
	if err != nil {
		return domain.ImageBlob{}, echo.NewHTTPError(http.StatusBadRequest, "cannot read "+field)
	}

	return domain.ImageBlob{Data: data, ContentType: fh.Header.Get("Content-Type")}, nil
}

func toCandidateView(c *domain.Candidate) candidateView {
	v := candidateView{
		ID:     c.ID,
		Name:   c.Name,
		Party:  c.Party,
		Email:  c.Email,
		Mobile: c.Mobile,
		Agenda: c.Agenda,
	}
	if len(c.Photo.Data) > 0 {
		v.Photo = dataURL(c.Photo)
	}
	if len(c.PartySymbol.Data) > 0 {
		v.PartySymbol = dataURL(c.PartySymbol)
	}
	return v
}

func dataURL(img domain.ImageBlob) string {
	return fmt.Sprintf("data:%s;base64,%s", img.ContentType, base64.StdEncoding.EncodeToString(img.Data))
}
