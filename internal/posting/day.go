package posting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Day is one of the seven weekday labels used as availability keys on the wire.
type Day string

const (
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// Days lists every valid day in order. The week starts on Saturday.
var Days = []Day{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

// ParseDay resolves a day label case-insensitively.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range Days {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown day %q", s)
}

func (d Day) Valid() bool {
	return d.index() >= 0
}

func (d Day) index() int {
	for i, v := range Days {
		if v == d {
			return i
		}
	}
	return -1
}

// Availability maps a day to a free-text time range such as "9am-5pm".
// A missing key means the owner is unavailable that day.
type Availability map[Day]string

// Has reports whether the day is present as a key.
func (a Availability) Has(d Day) bool {
	_, ok := a[d]
	return ok
}

// Days returns the available days in week order.
func (a Availability) Days() []Day {
	days := make([]Day, 0, len(a))
	for _, d := range Days {
		if a.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (a Availability) String() string {
	parts := make([]string, 0, len(a))
	for _, d := range a.Days() {
		parts = append(parts, fmt.Sprintf("%s %s", d, a[d]))
	}
	return strings.Join(parts, ", ")
}

// UnmarshalJSON drops keys outside the fixed day vocabulary.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Availability, len(raw))
	for key, value := range raw {
		day, err := ParseDay(key)
		if err != nil {
			continue
		}
		switch v := value.(type) {
		case string:
			out[day] = v
		case nil:
			continue
		default:
			out[day] = fmt.Sprintf("%v", v)
		}
	}
	*a = out
	return nil
}

// DaySet is the set of days a filter requires.
type DaySet map[Day]bool

// NewDaySet parses labels into a set, failing on the first unknown label.
func NewDaySet(labels ...string) (DaySet, error) {
	set := make(DaySet, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		day, err := ParseDay(label)
		if err != nil {
			return nil, err
		}
		set[day] = true
	}
	return set, nil
}

// Toggle flips a day on or off the way a checkbox would.
func (s DaySet) Toggle(d Day) {
	if s[d] {
		delete(s, d)
		return
	}
	s[d] = true
}

// Active returns the checked days in week order.
func (s DaySet) Active() []Day {
	days := make([]Day, 0, len(s))
	for d, on := range s {
		if on && d.Valid() {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].index() < days[j].index() })
	return days
}

func (s DaySet) Len() int {
	return len(s.Active())
}
