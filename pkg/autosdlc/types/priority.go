package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the importance the planner assigned to a requirement.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

var priorityRanks = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// NewPriority parses value, which must match one of the known levels exactly.
func NewPriority(value string) (Priority, error) {
	p := Priority(value)
	if _, ok := priorityRanks[p]; !ok {
		return "", fmt.Errorf("invalid priority %q: must be High, Medium, or Low", value)
	}
	return p, nil
}

func (p Priority) String() string { return string(p) }

// Known reports whether p is one of the planner's levels.
func (p Priority) Known() bool {
	_, ok := priorityRanks[p]
	return ok
}

// IsHigherThan orders priorities; unknown values rank below Low.
func (p Priority) IsHigherThan(other Priority) bool {
	return priorityRanks[p] > priorityRanks[other]
}

// UnmarshalJSON accepts any casing from the backend and keeps unknown
// values verbatim so they still render.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	for known := range priorityRanks {
		if strings.EqualFold(raw, string(known)) {
			*p = known
			return nil
		}
	}
	*p = Priority(raw)
	return nil
}
