package bookings

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// MemoryStore keeps bookings in process memory. It backs the subgraph when no
// database is configured and is used by tests. It is read-only after construction.
type MemoryStore struct {
	bookings map[string][]Booking // listing id → bookings
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(seed ...Booking) *MemoryStore {
	s := &MemoryStore{bookings: make(map[string][]Booking)}
	for _, b := range seed {
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		s.bookings[b.ListingID] = append(s.bookings[b.ListingID], b)
	}
	return s
}

func (s *MemoryStore) BookingsForListing(_ context.Context, listingID string, statuses []Status) ([]Booking, error) {
	var out []Booking
	for _, b := range s.bookings[listingID] {
		if slices.Contains(statuses, b.Status) {
			out = append(out, b)
		}
	}
	return out, nil
}
