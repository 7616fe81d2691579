// Package bookings is the BookingsDb datasource: read access to guest bookings
// used by the listings subgraph to decide whether a listing is free for a date range.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusCurrent   Status = "CURRENT"
	StatusCompleted Status = "COMPLETED"
)

// activeStatuses are the statuses that still occupy a listing.
var activeStatuses = []Status{StatusUpcoming, StatusCurrent}

var ErrInvalidDateRange = errors.New("invalid date range")

type Booking struct {
	ID           string
	ListingID    string
	GuestID      string
	CheckInDate  time.Time
	CheckOutDate time.Time
	Status       Status
}

// overlaps reports whether the booking occupies any night of [checkIn, checkOut).
func (b Booking) overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckInDate.Before(checkOut) && checkIn.Before(b.CheckOutDate)
}

// Store is the read side of the bookings table, which the bookings service owns.
// Implementations must be safe for concurrent use.
type Store interface {
	BookingsForListing(ctx context.Context, listingID string, statuses []Status) ([]Booking, error)
}

// DB is constructed once per request; the Store it wraps is the only shared part.
type DB struct {
	store Store
}

func New(store Store) *DB {
	return &DB{store: store}
}

// ParseDateRange parses a check-in/check-out pair and requires checkOut to be after checkIn.
func ParseDateRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-in date %q: %v", ErrInvalidDateRange, checkIn, err)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out date %q: %v", ErrInvalidDateRange, checkOut, err)
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out date must be after check-in date", ErrInvalidDateRange)
	}
	return in, out, nil
}

// IsListingAvailable reports whether no upcoming or current booking of the listing
// overlaps the requested stay.
func (db *DB) IsListingAvailable(ctx context.Context, listingID, checkIn, checkOut string) (bool, error) {
	in, out, err := ParseDateRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}

	bookings, err := db.store.BookingsForListing(ctx, listingID, activeStatuses)
	if err != nil {
		return false, fmt.Errorf("failed to load bookings for listing %s: %w", listingID, err)
	}

	for _, b := range bookings {
		if b.overlaps(in, out) {
			return false, nil
		}
	}
	return true, nil
}
