package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/shiftmatch/internal/posting"
)

const rankPath = "/api/matching/rank"

// Every element must wrap a posting under "job" or "request".
const rankResponseSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "anyOf": [
      {"required": ["job"], "properties": {"job": {"type": "object"}}},
      {"required": ["request"], "properties": {"request": {"type": "object"}}}
    ]
  }
}`

var rankSchema = mustSchema(rankResponseSchema)

type rankBody struct {
	// The backend names the field after requests for both roles.
	SelectedRequestID string `json:"selectedRequestId"`
}

type rankEnvelope struct {
	Job     *posting.Job     `json:"job"`
	Request *posting.Request `json:"request"`
}

// Rank asks the matching service to order the postings the role browses by
// compatibility with the caller's own posting selectedID. Server order is kept.
func (c *Client) Rank(ctx context.Context, role posting.Role, selectedID string) (*posting.Postings, error) {
	selectedID = strings.TrimSpace(selectedID)
	if selectedID == "" {
		return nil, fmt.Errorf("selected posting id is required")
	}

	data, err := c.do(ctx, http.MethodPost, rankPath, rankBody{SelectedRequestID: selectedID})
	if err != nil {
		return nil, err
	}

	result, err := rankSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: rank: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("%w: rank: %s", ErrMalformedResponse, strings.Join(problems, "; "))
	}

	var envelopes []rankEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("%w: rank: %v", ErrMalformedResponse, err)
	}

	items := make([]*posting.Posting, 0, len(envelopes))
	for idx, env := range envelopes {
		switch role.Browses() {
		case posting.KindJob:
			if env.Job == nil {
				return nil, fmt.Errorf("%w: rank: item %d has no job", ErrMalformedResponse, idx)
			}
			items = append(items, posting.FromJob(env.Job))
		default:
			if env.Request == nil {
				return nil, fmt.Errorf("%w: rank: item %d has no request", ErrMalformedResponse, idx)
			}
			items = append(items, posting.FromRequest(env.Request))
		}
	}

	c.logger.Debug("got ranking",
		zap.String("selected_id", selectedID),
		zap.Int("count", len(items)),
	)

	return posting.NewPostings(items...), nil
}

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}
