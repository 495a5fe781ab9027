package httpapi

import (
	"time"

	"github.com/dmitrijs2005/credvault/internal/server/models"
)

// RegisterRequest is the body of POST /api/v1/auth/register.
type RegisterRequest struct {
	FirstName        string  `json:"first_name" validate:"required,min=2,max=100"`
	LastName         string  `json:"last_name" validate:"required,min=2,max=100"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            string  `json:"phone" validate:"required,min=7,max=25"`
	Contact          string  `json:"contact" validate:"required,min=3,max=50"`
	ShortDescription *string `json:"short_description" validate:"omitempty,max=255"`
	Username         string  `json:"username" validate:"required,min=3,max=100"`
	Password         string  `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword  string  `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
}

// ForgotPasswordRequest is the body of POST /api/v1/auth/forgot-password.
type ForgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3"`
}

// ResetPasswordRequest is the body of POST /api/v1/auth/reset-password.
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,min=10"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Contact          string    `json:"contact"`
	ShortDescription *string   `json:"short_description"`
	Username         string    `json:"username"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse carries a fixed human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Phone:            u.Phone,
		Contact:          u.Contact,
		ShortDescription: u.ShortDescription,
		Username:         u.Username,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
