package datasources_test

import (
	"context"
	"testing"

	"github.com/n9te9/listings-subgraph/datasources"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings"
)

func TestFactory_ReturnsFreshInstances(t *testing.T) {
	client, err := listings.NewClient(listings.Config{BaseURL: "http://listings.invalid/"})
	if err != nil {
		t.Fatal(err)
	}
	factory := datasources.NewFactory(client, bookings.NewMemoryStore())

	a, b := factory(), factory()
	if a == b || a.ListingsAPI == b.ListingsAPI || a.BookingsDb == b.BookingsDb {
		t.Error("expected every call to construct new datasource instances")
	}
}

func TestFromContext(t *testing.T) {
	if got := datasources.FromContext(context.Background()); got != nil {
		t.Errorf("expected nil outside of a request, got %+v", got)
	}

	ds := &datasources.DataSources{}
	ctx := datasources.WithDataSources(context.Background(), ds)
	if got := datasources.FromContext(ctx); got != ds {
		t.Error("expected the datasources stored in the context")
	}
}
