package resolvers

import (
	"context"

	"github.com/n9te9/listings-subgraph/federation"
)

// EntityResolver resolves the _Entity union.
type EntityResolver struct {
	listing *ListingResolver
}

func (e *EntityResolver) ToListing() (*ListingResolver, bool) {
	return e.listing, e.listing != nil
}

func (r *Resolver) Entities(ctx context.Context, args struct{ Representations []federation.Any }) ([]*EntityResolver, error) {
	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	return federation.ResolveReferences(ctx, args.Representations, map[string]federation.ReferenceResolver[*EntityResolver]{
		"Listing": func(ctx context.Context, rep federation.Any) (*EntityResolver, error) {
			id, ok := rep.String("id")
			if !ok {
				return nil, UserInputError("Listing representation is missing id")
			}
			l, err := ds.ListingsAPI.GetListing(ctx, id)
			if err != nil || l == nil {
				return nil, err
			}
			return &EntityResolver{listing: newListingResolver(*l)}, nil
		},
	})
}
