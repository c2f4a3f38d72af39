package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spigell/shiftmatch/internal/posting"
)

const (
	jobsPath          = "/api/jobPost/myJobs"
	ownJobsPath       = "/api/jobPost/myJobsOnly"
	createJobPath     = "/api/jobPost/createJob"
	updateJobPath     = "/api/jobPost/updateJob/"
	deleteJobPath     = "/api/jobPost/deleteJob/"
	requestsPath      = "/api/studentRequest/myRequests"
	ownRequestsPath   = "/api/studentRequest/myRequestsOnly"
	createRequestPath = "/api/studentRequest/createRequest"
	updateRequestPath = "/api/studentRequest/updateRequest/"
	deleteRequestPath = "/api/studentRequest/deleteRequest/"
)

// Draft is the editable part of a posting. Experience is the job description
// for jobs and the former experience for requests.
type Draft struct {
	Location     string
	Experience   string
	Availability posting.Availability
}

func (d Draft) body(kind posting.Kind) map[string]any {
	avail := d.Availability
	if avail == nil {
		avail = posting.Availability{}
	}
	body := map[string]any{
		"location":     d.Location,
		"availability": avail,
	}
	if kind == posting.KindJob {
		body["jobDescription"] = d.Experience
	} else {
		body["formerExperience"] = d.Experience
	}
	return body
}

// GetBrowsable fetches the postings the role looks through: jobs for students, requests for managers.
func (c *Client) GetBrowsable(ctx context.Context, role posting.Role) (*posting.Postings, error) {
	if role.Browses() == posting.KindJob {
		return c.getJobs(ctx, jobsPath)
	}
	return c.getRequests(ctx, requestsPath)
}

// GetOwned fetches the postings published by the caller.
func (c *Client) GetOwned(ctx context.Context, role posting.Role) (*posting.Postings, error) {
	if role.Owns() == posting.KindJob {
		return c.getJobs(ctx, ownJobsPath)
	}
	return c.getRequests(ctx, ownRequestsPath)
}

// CreateOwned publishes a new posting of the kind the role owns.
func (c *Client) CreateOwned(ctx context.Context, role posting.Role, draft Draft) error {
	path := createRequestPath
	if role.Owns() == posting.KindJob {
		path = createJobPath
	}
	return c.doJSON(ctx, http.MethodPost, path, draft.body(role.Owns()), nil)
}

func (c *Client) UpdateOwned(ctx context.Context, role posting.Role, id string, draft Draft) error {
	id, err := pathID(id)
	if err != nil {
		return err
	}
	path := updateRequestPath + id
	if role.Owns() == posting.KindJob {
		path = updateJobPath + id
	}
	return c.doJSON(ctx, http.MethodPut, path, draft.body(role.Owns()), nil)
}

func (c *Client) DeleteOwned(ctx context.Context, role posting.Role, id string) error {
	id, err := pathID(id)
	if err != nil {
		return err
	}
	path := deleteRequestPath + id
	if role.Owns() == posting.KindJob {
		path = deleteJobPath + id
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) getJobs(ctx context.Context, path string) (*posting.Postings, error) {
	var jobs []*posting.Job
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, err
	}
	return posting.Jobs(jobs), nil
}

func (c *Client) getRequests(ctx context.Context, path string) (*posting.Postings, error) {
	var requests []*posting.Request
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &requests); err != nil {
		return nil, err
	}
	return posting.Requests(requests), nil
}

func pathID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	return url.PathEscape(id), nil
}
