package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: both the subject and
// the role must be present (their presence proves the middleware ran).
func ctxClaims(c echo.Context) (voterID, role string, err error) {
	voterID, _ = c.Get("sub").(string)
	role, _ = c.Get("role").(string)
	if voterID == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return voterID, role, nil
}
