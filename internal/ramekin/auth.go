package ramekin

import (
	"context"
	"net/http"
	"strings"

	"github.com/ramekin/ramekin-web/internal/errors"
)

// Credentials is the body of login and signup.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned by Login and Signup.
type AuthResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

// Signup creates an account and returns its bearer token.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/api/auth/signup", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*AuthResult, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, errors.Validation("username and password are required")
	}

	var out AuthResult
	err := c.do(ctx, request{method: http.MethodPost, path: path, body: creds, public: true}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.Internal("backend returned no token")
	}
	return &out, nil
}
