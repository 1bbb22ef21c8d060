package attendance

import "errors"

// Caller contract violations. Aggregate never reorders or filters its input
// to hide these.
var (
	ErrEventsOutOfOrder = errors.New("attendance: events not in chronological order")
	ErrMixedEmployees   = errors.New("attendance: events belong to more than one employee")
	ErrInvalidPeriod    = errors.New("attendance: invalid period")
	ErrInvalidRules     = errors.New("attendance: invalid rules")
)
