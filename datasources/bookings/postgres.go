package bookings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads the bookings table created by the embedded migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectBookingsForListing = `
SELECT id, listing_id, guest_id, check_in_date, check_out_date, status
FROM bookings
WHERE listing_id = $1 AND status = ANY($2)
ORDER BY check_in_date`

func (s *PostgresStore) BookingsForListing(ctx context.Context, listingID string, statuses []Status) ([]Booking, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}

	rows, err := s.pool.Query(ctx, selectBookingsForListing, listingID, names)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}

	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Booking, error) {
		var (
			b      Booking
			status string
		)
		if err := row.Scan(&b.ID, &b.ListingID, &b.GuestID, &b.CheckInDate, &b.CheckOutDate, &status); err != nil {
			return Booking{}, err
		}
		b.Status = Status(status)
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan bookings: %w", err)
	}
	return bookings, nil
}
