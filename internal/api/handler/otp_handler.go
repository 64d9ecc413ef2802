package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/securevote/election-system/internal/api/metrics"
	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
)

// OTPHandler exposes the one-time-code flows for the email and mobile channels.
type OTPHandler struct {
	codes ports.CodeService
}

func NewOTPHandler(codes ports.CodeService) *OTPHandler {
	return &OTPHandler{codes: codes}
}

type emailCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type mobileCodeRequest struct {
	Mobile string `json:"mobile" validate:"required,len=10,numeric"`
}

type verifyMobileRequest struct {
	Mobile string `json:"mobile" validate:"required,len=10,numeric"`
	Code   string `json:"code"   validate:"required,len=6,numeric"`
}

// RequestEmailCode issues a verification code to an email address.
//
// @Summary      Request an email verification code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body  body      emailCodeRequest  true  "Destination email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /verify/email/request [post]
func (h *OTPHandler) RequestEmailCode(c echo.Context) error {
	var req emailCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.codes.Issue(c.Request().Context(), domain.ChannelEmail, req.Email); err != nil {
		return err
	}

	metrics.CodesIssuedTotal.WithLabelValues(string(domain.ChannelEmail)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "verification code sent"})
}

// VerifyEmailCode consumes an email verification code.
//
// @Summary      Verify an email code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /verify/email [post]
func (h *OTPHandler) VerifyEmailCode(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return h.verify(c, domain.ChannelEmail, req.Email, req.Code, "email verified successfully")
}

// RequestMobileCode issues a verification code to a mobile number.
//
// @Summary      Request a mobile verification code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body  body      mobileCodeRequest  true  "Destination mobile"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /verify/mobile/request [post]
func (h *OTPHandler) RequestMobileCode(c echo.Context) error {
	var req mobileCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.codes.Issue(c.Request().Context(), domain.ChannelMobile, req.Mobile); err != nil {
		return err
	}

	metrics.CodesIssuedTotal.WithLabelValues(string(domain.ChannelMobile)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "verification code sent"})
}

// VerifyMobileCode consumes a mobile verification code.
//
// @Summary      Verify a mobile code
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        body  body      verifyMobileRequest  true  "Mobile and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /verify/mobile [post]
func (h *OTPHandler) VerifyMobileCode(c echo.Context) error {
	var req verifyMobileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return h.verify(c, domain.ChannelMobile, req.Mobile, req.Code, "mobile verified successfully")
}

func (h *OTPHandler) verify(c echo.Context, channel domain.Channel, identifier, code, okMsg string) error {
	err := h.codes.Verify(c.Request().Context(), channel, identifier, code)
	switch {
	case err == nil:
		metrics.CodesVerifiedTotal.WithLabelValues(string(channel), "verified").Inc()
		return c.JSON(http.StatusOK, messageResponse{Message: okMsg})
	case errors.Is(err, domain.ErrInvalidCode):
		metrics.CodesVerifiedTotal.WithLabelValues(string(channel), "invalid").Inc()
		return err
	case errors.Is(err, domain.ErrNoActiveCode):
		metrics.CodesVerifiedTotal.WithLabelValues(string(channel), "expired").Inc()
		return err
	default:
		return err
	}
}
