// Package backend is the HTTP client for the job matching API.
package backend

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent      = "spigell/shiftmatch"
	defaultTimeout = 15 * time.Second
	// Response bodies of failed calls are logged up to this many runes.
	defaultMaxLogLength = 300
)

type Client struct {
	token        string
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	MaxLogLength int
}

// New returns a client for apiURL. An empty token is allowed for the login call.
func New(logger *zap.Logger, apiURL, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  strings.TrimSpace(token),
		APIURL: strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:       logger,
		UserAgent:    userAgent,
		MaxLogLength: defaultMaxLogLength,
	}
}

// WithToken returns a copy of the client authenticated with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = strings.TrimSpace(token)
	return &clone
}

func (c *Client) url(path string) string {
	return c.APIURL + path
}
