// Package datasources wires the per-request datasource instances handed to resolvers.
package datasources

import (
	"context"

	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings"
)

// DataSources is the set of datasources visible to one request.
type DataSources struct {
	ListingsAPI *listings.API
	BookingsDb  *bookings.DB
}

// Factory builds a fresh DataSources for every request. Values must never be shared
// between requests.
type Factory func() *DataSources

// NewFactory returns a Factory backed by the process-wide listings client and bookings store.
func NewFactory(client *listings.Client, store bookings.Store) Factory {
	return func() *DataSources {
		return &DataSources{
			ListingsAPI: client.NewAPI(),
			BookingsDb:  bookings.New(store),
		}
	}
}

type contextKey struct{}

func WithDataSources(ctx context.Context, ds *DataSources) context.Context {
	return context.WithValue(ctx, contextKey{}, ds)
}

// FromContext returns the request's datasources, or nil outside of a request.
func FromContext(ctx context.Context) *DataSources {
	ds, _ := ctx.Value(contextKey{}).(*DataSources)
	return ds
}
