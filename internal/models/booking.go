package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState selects a subset of bookings relative to the current time or their status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var bookingStates = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseBookingState returns StateAll for an empty value.
func ParseBookingState(value string) (BookingState, error) {
	if value == "" {
		return StateAll, nil
	}
	for _, s := range bookingStates {
		if string(s) == value {
			return s, nil
		}
	}
	// The text is returned to clients as the error message; keep its capitalization.
	return "", fmt.Errorf("Unknown state: %s", value)

}

type Booking struct {
	ID       int64         `db:"id" json:"id"`
	Start    time.Time     `db:"start_date" json:"start"`
	End      time.Time     `db:"end_date" json:"end"`
	ItemID   int64         `db:"item_id" json:"item_id"`
	BookerID int64         `db:"booker_id" json:"booker_id"`
	Status   BookingStatus `db:"status" json:"status"`

	// Populated on reads.
	Item   Item `db:"-" json:"-"`
	Booker User `db:"-" json:"-"`
}

// Overlaps reports whether the booking intersects the half-open window [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// Matches reports whether the booking falls into state at the moment now.
func (b Booking) Matches(state BookingState, now time.Time) bool {
	switch state {
	case StateCurrent:
		return b.Start.Before(now) && b.End.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	default:
		return true
	}
}

func SameBooking(a, b Booking) bool {
	return a.ID != 0 && a.ID == b.ID
}
