package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spigell/shiftmatch/internal/posting"
	"github.com/spigell/shiftmatch/internal/session"
)

const loginPath = "/api/auth/login"

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Login exchanges credentials for a token and reads the user id and role from its claims.
// The token signature is not verified; the backend does that on every call.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}

	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, loginPath, body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "sign-in failed"
		}
		return nil, errors.New(msg)
	}

	return SessionFromToken(resp.Token)
}

// SessionFromToken builds a session from the {"user": {"id", "role"}} token claims.
func SessionFromToken(token string) (*session.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	user, ok := claims["user"].(map[string]any)
	if !ok {
		return nil, errors.New("decode token: user claim is missing")
	}

	s := &session.Session{Token: token}
	if id, ok := user["id"].(string); ok {
		s.UserID = id
	}
	if rawRole, ok := user["role"].(string); ok && rawRole != "" {
		role, err := posting.ParseRole(rawRole)
		if err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}
		s.Role = role
	}

	return s, nil
}
