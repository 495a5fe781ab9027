package client

import "time"

type RegisterRequest struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email"`
	Phone            string  `json:"phone"`
	Contact          string  `json:"contact"`
	ShortDescription *string `json:"short_description,omitempty"`
	Username         string  `json:"username"`
	Password         string  `json:"password"`
	ConfirmPassword  string  `json:"confirm_password"`
}

type User struct {
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

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type forgotRequest struct {
	Identifier string `json:"identifier"`
}

type resetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}
