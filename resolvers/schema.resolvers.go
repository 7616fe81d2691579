package resolvers

import (
	"context"

	"github.com/graph-gophers/graphql-go"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings"
	"golang.org/x/sync/errgroup"
)

const (
	defaultNumOfBeds = 1
	defaultPage      = 1
	defaultLimit     = 5
	defaultSortBy    = "COST_ASC"
)

func (r *Resolver) FeaturedListings(ctx context.Context) ([]*ListingResolver, error) {
	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	ls, err := ds.ListingsAPI.GetFeaturedListings(ctx)
	if err != nil {
		return nil, err
	}
	return newListingResolvers(ls), nil
}

func (r *Resolver) Listing(ctx context.Context, args struct{ ID graphql.ID }) (*ListingResolver, error) {
	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	l, err := ds.ListingsAPI.GetListing(ctx, string(args.ID))
	if err != nil || l == nil {
		return nil, err
	}
	return newListingResolver(*l), nil
}

func (r *Resolver) HostListings(ctx context.Context) ([]*ListingResolver, error) {
	userID, err := requireHost(ctx, "listings")
	if err != nil {
		return nil, err
	}

	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	ls, err := ds.ListingsAPI.GetListingsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newListingResolvers(ls), nil
}

type SearchListingsInput struct {
	CheckInDate  string
	CheckOutDate string
	NumOfBeds    *int32
	Page         *int32
	Limit        *int32
	SortBy       *string
}

func (in *SearchListingsInput) params() listings.SearchParams {
	p := listings.SearchParams{
		NumOfBeds: defaultNumOfBeds,
		Page:      defaultPage,
		Limit:     defaultLimit,
		SortBy:    defaultSortBy,
	}
	if in.NumOfBeds != nil {
		p.NumOfBeds = *in.NumOfBeds
	}
	if in.Page != nil {
		p.Page = *in.Page
	}
	if in.Limit != nil {
		p.Limit = *in.Limit
	}
	if in.SortBy != nil {
		p.SortBy = *in.SortBy
	}
	return p
}

// SearchListings returns the listings matching the criteria that have no booking
// overlapping the requested dates. Without criteria no availability filter applies.
func (r *Resolver) SearchListings(ctx context.Context, args struct{ Criteria *SearchListingsInput }) ([]*ListingResolver, error) {
	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	criteria := args.Criteria
	if criteria == nil {
		ls, err := ds.ListingsAPI.GetListings(ctx, (&SearchListingsInput{}).params())
		if err != nil {
			return nil, err
		}
		return newListingResolvers(ls), nil
	}

	if _, _, err := bookings.ParseDateRange(criteria.CheckInDate, criteria.CheckOutDate); err != nil {
		return nil, UserInputError(err.Error())
	}

	ls, err := ds.ListingsAPI.GetListings(ctx, criteria.params())
	if err != nil {
		return nil, err
	}

	available := make([]bool, len(ls))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range ls {
		g.Go(func() error {
			ok, err := ds.BookingsDb.IsListingAvailable(gctx, l.ID, criteria.CheckInDate, criteria.CheckOutDate)
			if err != nil {
				return err
			}
			available[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*ListingResolver, 0, len(ls))
	for i, l := range ls {
		if available[i] {
			out = append(out, newListingResolver(l))
		}
	}
	return out, nil
}

func (r *Resolver) ListingAmenities(ctx context.Context) ([]*AmenityResolver, error) {
	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	amenities, err := ds.ListingsAPI.GetAllAmenities(ctx)
	if err != nil {
		return nil, err
	}
	return newAmenityResolvers(amenities), nil
}

type CreateListingInput struct {
	Title          string
	Description    string
	PhotoThumbnail string
	NumOfBeds      int32
	CostPerNight   float64
	LocationType   string
	Amenities      []graphql.ID
}

func (r *Resolver) CreateListing(ctx context.Context, args struct{ Listing CreateListingInput }) (*CreateListingResponse, error) {
	userID, err := requireHost(ctx, "create listings")
	if err != nil {
		return nil, err
	}

	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	in := args.Listing
	created, err := ds.ListingsAPI.CreateListing(ctx, listings.NewListing{
		Title:          in.Title,
		Description:    in.Description,
		PhotoThumbnail: in.PhotoThumbnail,
		NumOfBeds:      in.NumOfBeds,
		CostPerNight:   in.CostPerNight,
		HostID:         userID,
		LocationType:   in.LocationType,
		Amenities:      idStrings(in.Amenities),
	})
	if err != nil {
		return &CreateListingResponse{mutationResponse{code: 400, message: failureMessage(err)}}, nil
	}

	return &CreateListingResponse{mutationResponse{
		code:    200,
		success: true,
		message: "Listing successfully created!",
		listing: newListingResolver(*created),
	}}, nil
}

type UpdateListingInput struct {
	Title          *string
	Description    *string
	PhotoThumbnail *string
	NumOfBeds      *int32
	CostPerNight   *float64
	LocationType   *string
	Amenities      *[]graphql.ID
}

func (r *Resolver) UpdateListing(ctx context.Context, args struct {
	ListingID graphql.ID
	Listing   UpdateListingInput
}) (*UpdateListingResponse, error) {
	userID, err := requireHost(ctx, "update listings")
	if err != nil {
		return nil, err
	}

	ds, err := dataSourcesFrom(ctx)
	if err != nil {
		return nil, err
	}

	id := string(args.ListingID)
	existing, err := ds.ListingsAPI.GetListing(ctx, id)
	if err != nil {
		return &UpdateListingResponse{mutationResponse{code: 400, message: failureMessage(err)}}, nil
	}
	if existing == nil {
		return &UpdateListingResponse{mutationResponse{code: 404, message: "Listing not found"}}, nil
	}
	if existing.HostID != userID {
		return nil, ForbiddenError("Only the host of a listing can update it")
	}

	in := args.Listing
	update := listings.ListingUpdate{
		Title:          in.Title,
		Description:    in.Description,
		PhotoThumbnail: in.PhotoThumbnail,
		NumOfBeds:      in.NumOfBeds,
		CostPerNight:   in.CostPerNight,
		LocationType:   in.LocationType,
	}
	if in.Amenities != nil {
		ids := idStrings(*in.Amenities)
		update.Amenities = &ids
	}

	updated, err := ds.ListingsAPI.UpdateListing(ctx, id, update)
	if err != nil {
		return &UpdateListingResponse{mutationResponse{code: 400, message: failureMessage(err)}}, nil
	}

	return &UpdateListingResponse{mutationResponse{
		code:    200,
		success: true,
		message: "Listing successfully updated!",
		listing: newListingResolver(*updated),
	}}, nil
}

func idStrings(ids []graphql.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
