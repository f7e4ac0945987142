package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/leavesystem/leavectl/internal/domain"
	"github.com/leavesystem/leavectl/pkg/apperrors"
)

// AuthClient exchanges credentials with the backend's auth endpoints.
type AuthClient struct {
	client *HTTPClient
}

// NewAuthClient creates an auth client over the shared transport.
func NewAuthClient(client *HTTPClient) *AuthClient {
	return &AuthClient{client: client}
}

// Credentials is the result of a successful login or registration.
type Credentials struct {
	Token string
	User  domain.User
}

type authResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

// Login exchanges username and password for a bearer token and user
// snapshot.
func (c *AuthClient) Login(ctx context.Context, username, password string) (*Credentials, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperrors.InvalidInput("username", "username is required")
	}
	if password == "" {
		return nil, apperrors.InvalidInput("password", "password is required")
	}

	req := map[string]string{"username": username, "password": password}
	var resp authResponse
	if err := c.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user, err := resp.User.toDomain()
	if err != nil {
		return nil, fmt.Errorf("login returned malformed user: %w", err)
	}
	return &Credentials{Token: resp.Token, User: user}, nil
}

// RegisterParams is the payload for account registration.
type RegisterParams struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Register creates an account and returns the same credential pair login
// does.
func (c *AuthClient) Register(ctx context.Context, params RegisterParams) (*Credentials, error) {
	if _, err := domain.ParseRole(params.Role); err != nil {
		return nil, err
	}

	var resp authResponse
	if err := c.client.Post(ctx, "/auth/register", params, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	user, err := resp.User.toDomain()
	if err != nil {
		return nil, fmt.Errorf("registration returned malformed user: %w", err)
	}
	return &Credentials{Token: resp.Token, User: user}, nil
}
