package ride

import (
	"fmt"
	"strings"
)

// Status represents ride status
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusInTransit Status = "IN_TRANSIT"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the statuses that count against the one-ride limit
var ActiveStatuses = []Status{StatusRequested, StatusAccepted, StatusPickedUp, StatusInTransit}

// flow lists the statuses directly reachable from each status. The first
// entry of each list is the primary path. Cancellation is not part of the
// flow; riders reach it through a separate operation.
var flow = map[Status][]Status{
	StatusRequested: {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusPickedUp},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusCompleted},
	StatusCompleted: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// IsValid validates the status
func (s Status) IsValid() bool {
	_, ok := flow[s]
	return ok
}

// IsActive reports whether s is in the active set
func (s Status) IsActive() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusPickedUp, StatusInTransit:
		return true
	}
	return false
}

// IsTerminal reports whether no status is reachable from s
func (s Status) IsTerminal() bool {
	return len(flow[s]) == 0
}

// NextStatuses returns a copy of the statuses reachable from s
func NextStatuses(s Status) []Status {
	return append([]Status(nil), flow[s]...)
}

// CanTransition reports whether to is directly reachable from from
func CanTransition(from, to Status) bool {
	for _, s := range flow[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanonicalPath follows the primary path from REQUESTED to its terminal status
func CanonicalPath() []Status {
	var path []Status
	seen := make(map[Status]bool)
	for cur := StatusRequested; !seen[cur]; {
		path = append(path, cur)
		seen[cur] = true
		next := flow[cur]
		if len(next) == 0 {
			break
		}
		cur = next[0]
	}
	return path
}

// CanonicalPathString renders CanonicalPath as "A → B → C"
func CanonicalPathString() string {
	path := CanonicalPath()
	names := make([]string, len(path))
	for i, s := range path {
		names[i] = string(s)
	}
	return strings.Join(names, " → ")
}

// TransitionError describes a status change the flow table does not allow
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid ride status transition from '%s' to '%s'. Ride status must follow this flow: %s",
		e.From, e.To, CanonicalPathString())
}

// ValidateTransition returns a *TransitionError when to is not reachable from from
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
