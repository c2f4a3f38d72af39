package posting

// Criteria holds the narrowing predicates configured by the user.
// The zero value filters nothing.
type Criteria struct {
	Location   string `mapstructure:"location" json:"location,omitempty"`
	Experience string `mapstructure:"experience" json:"experience,omitempty"`
	Gender     string `mapstructure:"gender" json:"gender,omitempty"`
	Days       DaySet `mapstructure:"-" json:"days,omitempty"`
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return c.Location == "" && c.Experience == "" && c.Gender == "" && c.Days.Len() == 0
}
