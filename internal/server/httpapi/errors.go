package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/labstack/echo/v4"
)

// statusFor maps an error to its HTTP status and client-facing detail.
// Anything not recognised is an internal error whose cause stays hidden.
func statusFor(err error) (int, any) {
	var verr *ValidationError
	var herr *echo.HTTPError

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Fields
	case errors.As(err, &herr):
		if msg, ok := herr.Message.(string); ok {
			return herr.Code, msg
		}
		return herr.Code, http.StatusText(herr.Code)
	case errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest, common.ErrEmailTaken.Error()
	case errors.Is(err, common.ErrUsernameTaken):
		return http.StatusBadRequest, common.ErrUsernameTaken.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, common.ErrInvalidOrExpiredToken.Error()
	case errors.Is(err, common.ErrPasswordTooLong):
		return http.StatusUnprocessableEntity, common.ErrPasswordTooLong.Error()
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, common.ErrTokenExpired.Error()
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, common.ErrInvalidToken.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, detail := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}
	if code == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, ErrorResponse{Detail: detail})
	}
	if werr != nil {
		s.log.Error(c.Request().Context(), "writing error response failed", "error", werr)
	}
}
