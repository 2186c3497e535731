// Package status defines the lifecycle of agent runs.
//
//	pending ─▶ running ─▶ completed | failed | cancelled
//
// A pending run may also fail or be cancelled before streaming starts.
package status

import "errors"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ErrInvalidTransition is returned by TransitionTo for a disallowed move.
var ErrInvalidTransition = errors.New("invalid status transition")

var next = map[Status][]Status{
	StatusPending:   {StatusRunning, StatusFailed, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: nil,
	StatusFailed:    nil,
	StatusCancelled: nil,
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	targets, ok := next[s]
	return ok && len(targets) == 0
}

// IsActive reports whether the run may still be streaming.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

func (s Status) IsValid() bool {
	_, ok := next[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range next[s] {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target, or s and ErrInvalidTransition.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}

// TerminalStatuses lists every terminal status in a stable order.
func TerminalStatuses() []Status {
	return []Status{StatusCompleted, StatusFailed, StatusCancelled}
}
