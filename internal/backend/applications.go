package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	applyPath        = "/api/JobApplication/apply-job/"
	applicationsPath = "/api/JobApplication/job-applications"
	respondPath      = "/api/JobApplication/respond-application"
)

// Application statuses a manager can answer with.
const (
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

type Application struct {
	ID        string `json:"_id"`
	Status    string `json:"status"`
	Student   Ref    `json:"studentId"`
	Job       JobRef `json:"jobId"`
	CreatedAt string `json:"createdAt"`
}

// JobRef is the job an application points to, populated or not.
type JobRef struct {
	ID             string `json:"_id"`
	JobDescription string `json:"jobDescription"`
	Location       string `json:"location"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Apply submits the student's application to a job and returns the server message.
func (c *Client) Apply(ctx context.Context, jobID string) (string, error) {
	id, err := pathID(jobID)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodPost, applyPath+id, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// GetApplications lists applications to the manager's jobs.
func (c *Client) GetApplications(ctx context.Context) ([]*Application, error) {
	var items []*Application
	if err := c.getItems(ctx, applicationsPath, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) RespondApplication(ctx context.Context, applicationID, status string) error {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return fmt.Errorf("application id is required")
	}

	status = strings.ToLower(strings.TrimSpace(status))
	if status != ApplicationAccepted && status != ApplicationRejected {
		return fmt.Errorf("invalid application status %q: use %s or %s", status, ApplicationAccepted, ApplicationRejected)
	}

	body := map[string]string{
		"applicationId": applicationID,
		"status":        status,
	}
	return c.doJSON(ctx, http.MethodPost, respondPath, body, nil)
}
