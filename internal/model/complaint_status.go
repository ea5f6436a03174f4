package model

// ComplaintStatus is the lifecycle state of a complaint
type ComplaintStatus string

const (
	StatusOpen       ComplaintStatus = "OPEN"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusResolved   ComplaintStatus = "RESOLVED"
	StatusClosed     ComplaintStatus = "CLOSED"
	StatusCancelled  ComplaintStatus = "CANCELLED"
)

// Statuses lists every lifecycle state in display order
var Statuses = []ComplaintStatus{
	StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusCancelled,
}

// transitions holds the allowed moves between distinct states.
// RESOLVED -> CLOSED is only taken by the dedicated close operation.
var transitions = map[ComplaintStatus][]ComplaintStatus{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusCancelled},
	StatusInProgress: {StatusOpen, StatusResolved, StatusCancelled},
	StatusResolved:   {StatusInProgress, StatusClosed},
	StatusClosed:     {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status
func (s ComplaintStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transitions leave s
func (s ComplaintStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether a complaint may move from one state to another.
// Staying in the same state is always allowed.
func CanTransition(from, to ComplaintStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
