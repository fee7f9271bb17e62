package task

import "fmt"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDelayed    Status = "delayed"
	StatusCompleted  Status = "completed"
)

// transitions lists every allowed edge. Completed is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusDelayed, StatusCompleted},
	StatusInProgress: {StatusPending, StatusDelayed, StatusCompleted},
	StatusDelayed:    {StatusPending, StatusInProgress, StatusCompleted},
	StatusCompleted:  {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Transition checks the edge from -> to.
func Transition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// NextStatuses returns the states reachable from s.
func NextStatuses(s Status) []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}
