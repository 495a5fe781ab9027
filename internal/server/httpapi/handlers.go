package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/labstack/echo/v4"
)

// AuthAPI is the part of the auth service exposed over HTTP.
type AuthAPI interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*services.TokenResponse, error)
	RequestPasswordReset(ctx context.Context, identifier string) error
	ResetPassword(ctx context.Context, secret, newPassword string) error
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// TokenParser validates access tokens and returns their subject.
type TokenParser interface {
	Parse(token string) (string, error)
}

// bindAndValidate decodes the JSON body into dst and runs the validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	return c.Validate(dst)
}

func (s *Server) register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Register(c.Request().Context(), services.RegisterInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Contact:          req.Contact,
		ShortDescription: req.ShortDescription,
		Username:         req.Username,
		Password:         req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newUserResponse(user))
}

func (s *Server) login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tok, err := s.auth.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: tok.AccessToken, TokenType: tok.TokenType})
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.auth.RequestPasswordReset(c.Request().Context(), req.Identifier); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, MessageResponse{Message: common.MessageResetRequested})
}

func (s *Server) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: common.MessagePasswordReset})
}

func (s *Server) me(c echo.Context) error {
	userID, _ := c.Get(userIDKey).(string)

	user, err := s.auth.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
