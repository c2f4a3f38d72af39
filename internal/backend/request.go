package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	// The backend reads the credential from this header; Authorization is sent as well.
	authHeader = "x-auth-token"
)

// ErrMalformedResponse marks responses that could not be decoded into the expected shape.
var ErrMalformedResponse = errors.New("malformed response")

// StatusError is returned for non-success HTTP statuses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// doJSON sends body as JSON and decodes a successful response into target.
func (c *Client) doJSON(ctx context.Context, method, path string, body, target any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}

	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}

	return nil
}

// getItems fetches a JSON array of loosely typed objects and decodes them with mapstructure.
func (c *Client) getItems(ctx context.Context, path string, target any) error {
	var items []any
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &items); err != nil {
		return err
	}
	return decodeItems(items, target)
}

func decodeItems(items any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       refHook,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(items); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

var refTypes = map[reflect.Type]bool{
	reflect.TypeOf(Ref{}):    true,
	reflect.TypeOf(JobRef{}): true,
}

// refHook lets reference fields accept both a bare id and a populated object.
func refHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if !refTypes[to] || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"_id": data}, nil
}

// do performs the request and returns the decoded body of a successful response.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   utils.TruncateForLog(string(data), c.MaxLogLength),
		}
		c.logger.Debug("request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", statusErr.Body),
		)
		return nil, statusErr
	}

	return data, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set(authHeader, c.token)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("X-Request-ID", uuid.New().String())

	return req
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	return io.ReadAll(reader)
}
