package posting

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Postings is an ordered list of postings as displayed to the user.
type Postings struct {
	Items []*Posting `json:"items" yaml:"items"`
}

func NewPostings(items ...*Posting) *Postings {
	return &Postings{Items: items}
}

// Jobs wraps jobs into postings, skipping nil entries.
func Jobs(jobs []*Job) *Postings {
	items := make([]*Posting, 0, len(jobs))
	for _, j := range jobs {
		if j != nil {
			items = append(items, FromJob(j))
		}
	}
	return &Postings{Items: items}
}

// Requests wraps requests into postings, skipping nil entries.
func Requests(requests []*Request) *Postings {
	items := make([]*Posting, 0, len(requests))
	for _, r := range requests {
		if r != nil {
			items = append(items, FromRequest(r))
		}
	}
	return &Postings{Items: items}
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	if p == nil {
		return nil
	}
	for _, item := range p.Items {
		if item != nil && item.ID() == id {
			return item
		}
	}
	return nil
}

func (p *Postings) IDs() []string {
	ids := make([]string, 0, p.Len())
	if p == nil {
		return ids
	}
	for _, item := range p.Items {
		if item != nil {
			ids = append(ids, item.ID())
		}
	}
	return ids
}

// Keep returns a new list holding the postings accepted by keep, in the original order.
// The receiver is never modified. Nil entries are always dropped; lists built by
// this package never hold them.
func (p *Postings) Keep(keep func(*Posting) bool) *Postings {
	if p == nil {
		return &Postings{}
	}
	kept := make([]*Posting, 0, len(p.Items))
	for _, item := range p.Items {
		if item != nil && keep(item) {
			kept = append(kept, item)
		}
	}
	return &Postings{Items: kept}
}

// Clone copies the slice so that reordering the copy leaves the receiver intact.
func (p *Postings) Clone() *Postings {
	if p == nil {
		return &Postings{}
	}
	items := make([]*Posting, len(p.Items))
	copy(items, p.Items)
	return &Postings{Items: items}
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToFile overwrites path with the postings in the DumpToTmpFile format.
func (p *Postings) ToFile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Append adds the postings of other that are not in p yet.
func (p *Postings) Append(other *Postings) {
	if other == nil {
		return
	}
	for _, item := range other.Items {
		if item != nil && p.FindByID(item.ID()) == nil {
			p.Items = append(p.Items, item)
		}
	}
}

// Without returns a new list lacking target. Postings are compared by identity,
// so entries sharing an empty id are told apart.
func (p *Postings) Without(target *Posting) *Postings {
	return p.Keep(func(item *Posting) bool {
		return item != target
	})
}

// ReadFile loads postings previously written by DumpToTmpFile. An empty file is an empty list.
// Null entries are dropped.
func ReadFile(path string) (*Postings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &Postings{}, nil
	}

	var p Postings
	if err := json.NewDecoder(file).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return p.Keep(func(*Posting) bool { return true }), nil
}

// ReportByLocation groups postings by location for a quick overview.
func (p *Postings) ReportByLocation() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	if p == nil {
		return report
	}
	for _, item := range p.Items {
		if item == nil {
			continue
		}
		key := strings.TrimSpace(item.Location())
		if key == "" {
			key = "unknown"
		}
		ownerID, ownerName := item.Owner()
		entry := map[string]string{
			"id":           item.ID(),
			"experience":   item.Experience(),
			"availability": item.Availability().String(),
			"owner":        fmt.Sprintf("%s (%s)", ownerName, ownerID),
		}
		if gender, ok := item.Gender(); ok && gender != "" {
			entry["gender"] = gender
		}
		if item.AI != nil {
			if item.AI.Error != "" {
				entry["ai_error"] = item.AI.Error
			} else {
				entry["ai_fit"] = fmt.Sprintf("%t", item.AI.Fit)
				entry["ai_score"] = fmt.Sprintf("%.2f", item.AI.Score)
				entry["ai_reason"] = item.AI.Reason
			}
		}
		report[key] = append(report[key], entry)
	}
	return report
}
