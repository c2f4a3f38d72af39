package posting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the account type of the current user.
type Role string

const (
	RoleStudent Role = "University Student"
	RoleManager Role = "Business Manager"
)

// ParseRole accepts the backend labels and the short aliases used on the command line.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "university student", "student":
		return RoleStudent, nil
	case "business manager", "manager":
		return RoleManager, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Browses returns the kind of posting this role looks through.
func (r Role) Browses() Kind {
	if r == RoleManager {
		return KindRequest
	}
	return KindJob
}

// Owns returns the kind of posting this role publishes.
func (r Role) Owns() Kind {
	if r == RoleManager {
		return KindJob
	}
	return KindRequest
}

// Kind tags a Posting variant.
type Kind string

const (
	KindJob     Kind = "job"
	KindRequest Kind = "request"
)

// Job is a posting published by a business manager.
type Job struct {
	ID             string       `json:"_id,omitempty" yaml:"id,omitempty"`
	ManagerID      string       `json:"managerId,omitempty" yaml:"managerId,omitempty"`
	ManagerName    string       `json:"managerName,omitempty" yaml:"managerName,omitempty"`
	ManagerPicture string       `json:"managerPicture,omitempty" yaml:"managerPicture,omitempty"`
	Location       string       `json:"location" yaml:"location"`
	JobDescription string       `json:"jobDescription" yaml:"jobDescription"`
	Availability   Availability `json:"availability" yaml:"availability"`
}

// Request is a posting published by a university student.
type Request struct {
	ID               string       `json:"_id,omitempty" yaml:"id,omitempty"`
	StudentID        string       `json:"studentId,omitempty" yaml:"studentId,omitempty"`
	StudentName      string       `json:"studentName,omitempty" yaml:"studentName,omitempty"`
	StudentPicture   string       `json:"studentPicture,omitempty" yaml:"studentPicture,omitempty"`
	Location         string       `json:"location" yaml:"location"`
	FormerExperience string       `json:"formerExperience" yaml:"formerExperience"`
	StudentGender    string       `json:"studentGender,omitempty" yaml:"studentGender,omitempty"`
	Availability     Availability `json:"availability" yaml:"availability"`
}

// UnmarshalJSON never fails on a field of the wrong type; such fields read as empty.
func (j *Job) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	*j = Job{
		ID:             idField(fields),
		ManagerID:      refField(fields, "managerId"),
		ManagerName:    stringField(fields, "managerName"),
		ManagerPicture: stringField(fields, "managerPicture"),
		Location:       stringField(fields, "location"),
		JobDescription: stringField(fields, "jobDescription"),
		Availability:   availabilityField(fields),
	}
	return nil
}

// UnmarshalJSON never fails on a field of the wrong type; such fields read as empty.
func (r *Request) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	*r = Request{
		ID:               idField(fields),
		StudentID:        refField(fields, "studentId"),
		StudentName:      stringField(fields, "studentName"),
		StudentPicture:   stringField(fields, "studentPicture"),
		Location:         stringField(fields, "location"),
		FormerExperience: stringField(fields, "formerExperience"),
		StudentGender:    stringField(fields, "studentGender"),
		Availability:     availabilityField(fields),
	}
	return nil
}

// Posting is either a Job or a Request. Kind decides which pointer is set.
type Posting struct {
	Kind    Kind     `json:"kind" yaml:"kind"`
	Job     *Job     `json:"job,omitempty" yaml:"job,omitempty"`
	Request *Request `json:"request,omitempty" yaml:"request,omitempty"`
	// AI is filled only when the ai_fit filter step ran.
	AI *AIAssessment `json:"ai,omitempty" yaml:"ai,omitempty"`
}

// AIAssessment is the optional model verdict attached to a posting.
type AIAssessment struct {
	Fit    bool    `json:"fit" yaml:"fit"`
	Score  float64 `json:"score" yaml:"score"`
	Reason string  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
	Raw    string  `json:"-" yaml:"-"`
}

func FromJob(j *Job) *Posting {
	return &Posting{Kind: KindJob, Job: j}
}

func FromRequest(r *Request) *Posting {
	return &Posting{Kind: KindRequest, Request: r}
}

func (p *Posting) ID() string {
	switch p.Kind {
	case KindJob:
		if p.Job != nil {
			return p.Job.ID
		}
	case KindRequest:
		if p.Request != nil {
			return p.Request.ID
		}
	}
	return ""
}

func (p *Posting) Location() string {
	switch p.Kind {
	case KindJob:
		if p.Job != nil {
			return p.Job.Location
		}
	case KindRequest:
		if p.Request != nil {
			return p.Request.Location
		}
	}
	return ""
}

// Experience is the job description of a Job or the former experience of a Request.
func (p *Posting) Experience() string {
	switch p.Kind {
	case KindJob:
		if p.Job != nil {
			return p.Job.JobDescription
		}
	case KindRequest:
		if p.Request != nil {
			return p.Request.FormerExperience
		}
	}
	return ""
}

// Gender is only carried by requests. For jobs the second value is false.
func (p *Posting) Gender() (string, bool) {
	if p.Kind == KindRequest && p.Request != nil {
		return p.Request.StudentGender, true
	}
	return "", false
}

func (p *Posting) Availability() Availability {
	switch p.Kind {
	case KindJob:
		if p.Job != nil {
			return p.Job.Availability
		}
	case KindRequest:
		if p.Request != nil {
			return p.Request.Availability
		}
	}
	return nil
}

// Owner returns the publisher id and display name.
func (p *Posting) Owner() (string, string) {
	switch p.Kind {
	case KindJob:
		if p.Job != nil {
			return p.Job.ManagerID, p.Job.ManagerName
		}
	case KindRequest:
		if p.Request != nil {
			return p.Request.StudentID, p.Request.StudentName
		}
	}
	return "", ""
}

// Label is a single line description used by interactive prompts.
func (p *Posting) Label() string {
	_, owner := p.Owner()
	label := fmt.Sprintf("%s %s / %s", p.ID(), p.Location(), p.Experience())
	if owner != "" {
		label += " / " + owner
	}
	if avail := p.Availability(); len(avail) > 0 {
		label += " / " + avail.String()
	}
	return label
}

func decodeObject(data []byte) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func idField(fields map[string]any) string {
	if id := stringField(fields, "_id"); id != "" {
		return id
	}
	return stringField(fields, "id")
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

// refField reads a reference that the backend returns either as an id or as a populated object.
func refField(fields map[string]any, key string) string {
	if nested, ok := fields[key].(map[string]any); ok {
		return idField(nested)
	}
	return stringField(fields, key)
}

func availabilityField(fields map[string]any) Availability {
	raw, ok := fields["availability"]
	if !ok || raw == nil {
		return Availability{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return Availability{}
	}
	var avail Availability
	if err := json.Unmarshal(data, &avail); err != nil {
		return Availability{}
	}
	return avail
}
