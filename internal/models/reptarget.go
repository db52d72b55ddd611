package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// RepTarget is a template's advisory rep prescription. Clients send either
// a plain number (8) or a range string ("8-12"); both are kept verbatim as
// a string. It is display metadata only and never pre-populates sets.
type RepTarget string

// UnmarshalJSON accepts a JSON string or a JSON number.
func (r *RepTarget) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = RepTarget(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return fmt.Errorf("target_reps must not be negative")
		}
		*r = RepTarget(strconv.Itoa(n))
		return nil
	}
	return fmt.Errorf("target_reps must be a string or an integer")
}

// MarshalJSON renders the target as a JSON string.
func (r RepTarget) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}
