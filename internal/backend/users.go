package backend

import (
	"context"
	"net/http"
)

const userPath = "/api/user"

// Ref is a reference the backend returns either as an id or as a populated document.
type Ref struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type User struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Picture string `json:"profilePicture"`
	Gender  string `json:"gender"`
	Major   string `json:"major"`
	Company string `json:"companyName"`
}

// CurrentUser returns the profile of the token owner.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.doJSON(ctx, http.MethodGet, userPath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	id, err := pathID(id)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.doJSON(ctx, http.MethodGet, userPath+"/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
