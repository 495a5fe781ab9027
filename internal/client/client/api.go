package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiPrefix = "/api/v1/auth"

// APIClient talks to the credvault HTTP API.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient validates baseURL, which must be an absolute http(s) URL.
func NewAPIClient(baseURL string, timeout time.Duration) (*APIClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: want http(s)://host[:port]", baseURL)
	}

	return &APIClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *APIClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) Login(ctx context.Context, identifier, password string) (*Token, error) {
	var t Token
	if err := c.do(ctx, http.MethodPost, "/login", "", loginRequest{Identifier: identifier, Password: password}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ForgotPassword returns the server's message, which is the same whether or
// not the account exists.
func (c *APIClient) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	var m messageResponse
	if err := c.do(ctx, http.MethodPost, "/forgot-password", "", forgotRequest{Identifier: identifier}, &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

func (c *APIClient) ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error) {
	var m messageResponse
	body := resetRequest{Token: token, NewPassword: newPassword, ConfirmPassword: confirm}
	if err := c.do(ctx, http.MethodPost, "/reset-password", "", body, &m); err != nil {
		return "", err
	}
	return m.Message, nil
}

// Me returns the user the access token belongs to.
func (c *APIClient) Me(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/me", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *APIClient) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError reads {"detail": ...}; detail is either a message or a list
// of field errors.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var msg string
	if err := json.Unmarshal(envelope.Detail, &msg); err == nil {
		apiErr.Detail = msg
		return apiErr
	}

	var fields []FieldError
	if err := json.Unmarshal(envelope.Detail, &fields); err == nil {
		apiErr.Detail = "validation error"
		apiErr.Fields = fields
	}
	return apiErr
}
