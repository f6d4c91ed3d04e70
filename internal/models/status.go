package models

import "fmt"

// Status is the booking lifecycle state.
type Status string

const (
	StatusInquiry    Status = "inquiry"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no-show"
)

var Statuses = []Status{
	StatusInquiry, StatusConfirmed, StatusCheckedIn,
	StatusCheckedOut, StatusCancelled, StatusNoShow,
}

// OccupyingStatuses count against program capacity.
var OccupyingStatuses = []Status{StatusConfirmed, StatusCheckedIn}

// lifecycle is the regular forward path of a booking. Staff with override
// rights may move between any two states; see CanTransition.
var lifecycle = map[Status][]Status{
	StatusInquiry:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusCheckedOut, StatusCancelled},
	StatusNoShow:     {StatusCancelled},
	StatusCheckedOut: {},
	StatusCancelled:  {},
}

func (s Status) IsValid() bool {
	_, ok := lifecycle[s]
	return ok
}

// IsTerminal reports whether the guest path has no way out of s.
func (s Status) IsTerminal() bool {
	return len(lifecycle[s]) == 0
}

// CanTransition reports whether s may move to target. With override every
// known state is reachable from every other.
func (s Status) CanTransition(target Status, override bool) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	if override {
		return true
	}
	for _, t := range lifecycle[s] {
		if t == target {
			return true
		}
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
