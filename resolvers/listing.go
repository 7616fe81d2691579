package resolvers

import (
	"context"
	"errors"

	"github.com/graph-gophers/graphql-go"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings"
)

type ListingResolver struct {
	listing listings.Listing
}

func newListingResolver(l listings.Listing) *ListingResolver {
	return &ListingResolver{listing: l}
}

func newListingResolvers(ls []listings.Listing) []*ListingResolver {
	out := make([]*ListingResolver, len(ls))
	for i, l := range ls {
		out[i] = newListingResolver(l)
	}
	return out
}

func (l *ListingResolver) ID() graphql.ID         { return graphql.ID(l.listing.ID) }
func (l *ListingResolver) Title() string          { return l.listing.Title }
func (l *ListingResolver) Description() string    { return l.listing.Description }
func (l *ListingResolver) PhotoThumbnail() string { return l.listing.PhotoThumbnail }
func (l *ListingResolver) NumOfBeds() int32       { return l.listing.NumOfBeds }
func (l *ListingResolver) CostPerNight() float64  { return l.listing.CostPerNight }
func (l *ListingResolver) LocationType() string   { return l.listing.LocationType }

func (l *ListingResolver) Host() *HostResolver {
	return &HostResolver{id: l.listing.HostID}
}

// Amenities falls back to the listing details endpoint when the listing was loaded
// from an endpoint that omits amenities.
func (l *ListingResolver) Amenities(ctx context.Context) ([]*AmenityResolver, error) {
	amenities := l.listing.Amenities
	if amenities == nil {
		ds, err := dataSourcesFrom(ctx)
		if err != nil {
			return nil, err
		}
		full, err := ds.ListingsAPI.GetListing(ctx, l.listing.ID)
		if err != nil {
			return nil, err
		}
		if full != nil {
			amenities = full.Amenities
		}
	}
	return newAmenityResolvers(amenities), nil
}

type totalCostArgs struct {
	CheckInDate  string
	CheckOutDate string
}

func (l *ListingResolver) TotalCost(ctx context.Context, args totalCostArgs) (float64, error) {
	if _, _, err := bookings.ParseDateRange(args.CheckInDate, args.CheckOutDate); err != nil {
		return 0, UserInputError(err.Error())
	}

	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return 0, err
	}
	return ds.ListingsAPI.GetTotalCost(ctx, l.listing.ID, args.CheckInDate, args.CheckOutDate)
}

// HostResolver is a reference to a Host entity owned by another subgraph.
type HostResolver struct {
	id string
}

func (h *HostResolver) ID() graphql.ID { return graphql.ID(h.id) }

type AmenityResolver struct {
	amenity listings.Amenity
}

func newAmenityResolvers(as []listings.Amenity) []*AmenityResolver {
	out := make([]*AmenityResolver, len(as))
	for i, a := range as {
		out[i] = &AmenityResolver{amenity: a}
	}
	return out
}

func (a *AmenityResolver) ID() graphql.ID   { return graphql.ID(a.amenity.ID) }
func (a *AmenityResolver) Category() string { return a.amenity.Category }
func (a *AmenityResolver) Name() string     { return a.amenity.Name }

type mutationResponse struct {
	code    int32
	success bool
	message string
	listing *ListingResolver
}

func (m *mutationResponse) Code() int32               { return m.code }
func (m *mutationResponse) Success() bool             { return m.success }
func (m *mutationResponse) Message() string           { return m.message }
func (m *mutationResponse) Listing() *ListingResolver { return m.listing }

type CreateListingResponse struct{ mutationResponse }

type UpdateListingResponse struct{ mutationResponse }

// failureMessage prefers the body the listings service sent back.
func failureMessage(err error) string {
	var respErr *listings.ResponseError
	if errors.As(err, &respErr) && respErr.Body != "" {
		return respErr.Body
	}
	return err.Error()
}
