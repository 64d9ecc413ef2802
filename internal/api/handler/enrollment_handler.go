package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/securevote/election-system/internal/api/metrics"
	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// PhotoIntake stores an uploaded enrollment photo in the scratch directory
// and returns its temporary path. The enrollment pipeline owns the cleanup.
type PhotoIntake interface {
	Save(r io.Reader) (string, error)
}

// EnrollmentHandler handles voter registration.
type EnrollmentHandler struct {
	enrollment ports.EnrollmentService
	intake     PhotoIntake
}

func NewEnrollmentHandler(enrollment ports.EnrollmentService, intake PhotoIntake) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment, intake: intake}
}

type registerForm struct {
	FirstName   string `form:"first_name"  validate:"required"`
	LastName    string `form:"last_name"   validate:"required"`
	Email       string `form:"email"       validate:"required,email"`
	Password    string `form:"password"    validate:"required,min=8"`
	Role        string `form:"role"        validate:"required,oneof=voter admin"`
	Gender      string `form:"gender"      validate:"omitempty,oneof=male female other prefer-not-to-say"`
	DateOfBirth string `form:"dob"         validate:"required,datetime=2006-01-02"`
	NationalID  string `form:"national_id" validate:"required,len=12,numeric"`
	Mobile      string `form:"mobile"      validate:"required,len=10,numeric"`
	VoterID     string `form:"voter_id"    validate:"required"`
}

type registerResponse struct {
	VoterID string `json:"voter_id"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// Register enrolls a new voter from a multipart form with a photo.
//
// @Summary      Register a voter
// @Tags         enrollment
// @Accept       multipart/form-data
// @Produce      json
// @Param        photo  formData  file  true  "Enrollment photo with exactly one face"
// @Success      201    {object}  registerResponse
// @Failure      400    {object}  errorResponse
// @Failure      409    {object}  errorResponse
// @Failure      502    {object}  errorResponse
// @Router       /auth/register [post]
func (h *EnrollmentHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		metrics.EnrollmentsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dob, err := time.Parse("2006-01-02", form.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dob must be a date in 2006-01-02 format")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		metrics.EnrollmentsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "enrollment photo is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read enrollment photo")
	}
	defer src.Close()

	photoPath, err := h.intake.Save(src)
	if err != nil {
		return err
	}

	voter, err := h.enrollment.Enroll(c.Request().Context(), ports.EnrollmentInput{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		Email:       form.Email,
		Password:    form.Password,
		Role:        form.Role,
		Gender:      form.Gender,
		DateOfBirth: dob,
		NationalID:  form.NationalID,
		Mobile:      form.Mobile,
		VoterID:     form.VoterID,
		PhotoPath:   photoPath,
	})
	if err != nil {
		metrics.EnrollmentsTotal.WithLabelValues(enrollmentOutcome(err)).Inc()
		return err
	}

	metrics.EnrollmentsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, registerResponse{
		VoterID: voter.VoterID,
		Role:    voter.Role,
		Message: "registration successful",
	})
}

func enrollmentOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrMobileTaken),
		errors.Is(err, domain.ErrNationalIDTaken),
		errors.Is(err, domain.ErrVoterIDTaken):
		return "conflict"
	case errors.Is(err, domain.ErrNoFaceDetected):
		return "no_face"
	case errors.Is(err, domain.ErrMultipleFaces):
		return "multiple_faces"
	case errors.Is(err, domain.ErrChannelNotVerified):
		return "not_verified"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
