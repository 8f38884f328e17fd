package booking

import (
	"fmt"

	"github.com/HappyTails-Pet-Care/service-boarding/internal/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusRejected   BookingStatus = "rejected"
)

// validTransitions is the canonical state machine. It is binding for clients
// and for terminality; staff may move a non-terminal booking to any other
// status, since front-desk corrections happen out of band.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusRejected:   {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanTransitionTo returns true if the canonical table allows moving from this
// status to the target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ClientMayRequest returns true if a client may request the target status from
// this one. Clients may only cancel, and only while the booking is pending or
// confirmed.
func (s BookingStatus) ClientMayRequest(target BookingStatus) bool {
	if target != StatusCancelled {
		return false
	}
	return s == StatusPending || s == StatusConfirmed
}

// StaffMayRequest returns true if staff may set the target status from this
// one. No-op updates, moving back to pending, and resurrecting terminal
// bookings are refused.
func (s BookingStatus) StaffMayRequest(target BookingStatus) bool {
	if s.IsTerminal() {
		return false
	}
	return target.IsValid() && target != s && target != StatusPending
}

// MayRequest dispatches the actor-specific permission check.
func (s BookingStatus) MayRequest(target BookingStatus, role domain.Role) bool {
	if role == domain.RoleStaff {
		return s.StaffMayRequest(target)
	}
	return s.ClientMayRequest(target)
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
