package bookings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(bookings.DateLayout, s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDB_IsListingAvailable(t *testing.T) {
	store := bookings.NewMemoryStore(
		bookings.Booking{ListingID: "listing-1", GuestID: "guest-1", CheckInDate: date(t, "2025-01-10"), CheckOutDate: date(t, "2025-01-15"), Status: bookings.StatusUpcoming},
		bookings.Booking{ListingID: "listing-1", GuestID: "guest-2", CheckInDate: date(t, "2024-12-01"), CheckOutDate: date(t, "2024-12-05"), Status: bookings.StatusCompleted},
		bookings.Booking{ListingID: "listing-2", GuestID: "guest-3", CheckInDate: date(t, "2025-01-01"), CheckOutDate: date(t, "2025-01-31"), Status: bookings.StatusCurrent},
	)
	db := bookings.New(store)

	tests := []struct {
		name      string
		listingID string
		checkIn   string
		checkOut  string
		want      bool
	}{
		{name: "no bookings at all", listingID: "listing-3", checkIn: "2025-01-10", checkOut: "2025-01-12", want: true},
		{name: "overlaps upcoming booking", listingID: "listing-1", checkIn: "2025-01-12", checkOut: "2025-01-20", want: false},
		{name: "check-in on previous check-out", listingID: "listing-1", checkIn: "2025-01-15", checkOut: "2025-01-18", want: true},
		{name: "check-out on next check-in", listingID: "listing-1", checkIn: "2025-01-05", checkOut: "2025-01-10", want: true},
		{name: "completed booking is ignored", listingID: "listing-1", checkIn: "2024-12-02", checkOut: "2024-12-04", want: true},
		{name: "inside current booking", listingID: "listing-2", checkIn: "2025-01-10", checkOut: "2025-01-11", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.IsListingAvailable(context.Background(), tt.listingID, tt.checkIn, tt.checkOut)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsListingAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDB_IsListingAvailable_InvalidRange(t *testing.T) {
	db := bookings.New(bookings.NewMemoryStore())

	for _, r := range [][2]string{
		{"2025-01-10", "2025-01-10"},
		{"2025-01-10", "2025-01-09"},
		{"10/01/2025", "2025-01-12"},
		{"2025-01-10", ""},
	} {
		_, err := db.IsListingAvailable(context.Background(), "listing-1", r[0], r[1])
		if !errors.Is(err, bookings.ErrInvalidDateRange) {
			t.Errorf("range %v: expected ErrInvalidDateRange, got %v", r, err)
		}
	}
}

func TestMemoryStore_BookingsForListing(t *testing.T) {
	upcoming := bookings.Booking{ListingID: "listing-1", GuestID: "guest-1", CheckInDate: date(t, "2025-01-10"), CheckOutDate: date(t, "2025-01-15"), Status: bookings.StatusUpcoming}
	completed := bookings.Booking{ListingID: "listing-1", GuestID: "guest-2", CheckInDate: date(t, "2024-12-01"), CheckOutDate: date(t, "2024-12-05"), Status: bookings.StatusCompleted}
	other := bookings.Booking{ListingID: "listing-2", GuestID: "guest-3", CheckInDate: date(t, "2025-01-01"), CheckOutDate: date(t, "2025-01-31"), Status: bookings.StatusUpcoming}
	store := bookings.NewMemoryStore(upcoming, completed, other)

	got, err := store.BookingsForListing(context.Background(), "listing-1", []bookings.Status{bookings.StatusUpcoming, bookings.StatusCurrent})
	if err != nil {
		t.Fatalf("BookingsForListing failed: %v", err)
	}
	if diff := cmp.Diff([]bookings.Booking{upcoming}, got, cmpopts.IgnoreFields(bookings.Booking{}, "ID")); diff != "" {
		t.Fatalf("BookingsForListing mismatch (-want +got):\n%s", diff)
	}
	if got[0].ID == "" {
		t.Error("expected seeded bookings to get an id")
	}
}
