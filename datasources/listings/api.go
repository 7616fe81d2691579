package listings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

// API is the per-request ListingsAPI datasource.
type API struct {
	client *Client

	group singleflight.Group
	mu    sync.Mutex
	memo  map[string][]byte // url → response body
}

// fetch returns the body of GET u, at most once per API value.
func (a *API) fetch(ctx context.Context, u string) ([]byte, error) {
	a.mu.Lock()
	body, ok := a.memo[u]
	a.mu.Unlock()
	if ok {
		return body, nil
	}

	// The shared fetch ignores the first caller's cancellation; the client
	// timeout bounds it.
	ch := a.group.DoChan(u, func() (any, error) {
		a.mu.Lock()
		if b, ok := a.memo[u]; ok {
			a.mu.Unlock()
			return b, nil
		}
		a.mu.Unlock()

		b, err := a.client.get(context.WithoutCancel(ctx), u)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		a.memo[u] = b
		a.mu.Unlock()
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (a *API) get(ctx context.Context, query url.Values, out any, segments ...string) error {
	u := a.client.resolve(query, segments...)
	body, err := a.fetch(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", u, err)
	}
	return nil
}

func (a *API) GetFeaturedListings(ctx context.Context) ([]Listing, error) {
	var listings []Listing
	if err := a.get(ctx, nil, &listings, "featured-listings"); err != nil {
		return nil, err
	}
	return listings, nil
}

// GetListing returns nil without error when the service does not know the id.
func (a *API) GetListing(ctx context.Context, id string) (*Listing, error) {
	var listing Listing
	if err := a.get(ctx, nil, &listing, "listings", id); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (a *API) GetTotalCost(ctx context.Context, id, checkInDate, checkOutDate string) (float64, error) {
	query := url.Values{}
	query.Set("checkInDate", checkInDate)
	query.Set("checkOutDate", checkOutDate)

	var resp totalCostResponse
	if err := a.get(ctx, query, &resp, "listings", id, "totalCost"); err != nil {
		return 0, err
	}
	return resp.TotalCost, nil
}

func (a *API) GetListingsForUser(ctx context.Context, userID string) ([]Listing, error) {
	var listings []Listing
	if err := a.get(ctx, nil, &listings, "user", userID, "listings"); err != nil {
		return nil, err
	}
	return listings, nil
}

func (a *API) GetListings(ctx context.Context, params SearchParams) ([]Listing, error) {
	query := url.Values{}
	if params.NumOfBeds > 0 {
		query.Set("numOfBeds", strconv.Itoa(int(params.NumOfBeds)))
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(int(params.Page)))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(int(params.Limit)))
	}
	if params.SortBy != "" {
		query.Set("sortBy", params.SortBy)
	}

	var listings []Listing
	if err := a.get(ctx, query, &listings, "listings"); err != nil {
		return nil, err
	}
	return listings, nil
}

func (a *API) GetAllAmenities(ctx context.Context) ([]Amenity, error) {
	var amenities []Amenity
	if err := a.get(ctx, nil, &amenities, "listing", "amenities"); err != nil {
		return nil, err
	}
	return amenities, nil
}

func (a *API) CreateListing(ctx context.Context, listing NewListing) (*Listing, error) {
	body, err := a.client.send(ctx, http.MethodPost, a.client.resolve(nil, "listings"), listingBody[NewListing]{Listing: listing})
	if err != nil {
		return nil, err
	}

	var created Listing
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created listing: %w", err)
	}
	return &created, nil
}

func (a *API) UpdateListing(ctx context.Context, id string, update ListingUpdate) (*Listing, error) {
	u := a.client.resolve(nil, "listings", id)
	body, err := a.client.send(ctx, http.MethodPatch, u, listingBody[ListingUpdate]{Listing: update})
	if err != nil {
		return nil, err
	}

	var updated Listing
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated listing: %w", err)
	}

	// The cached representation is stale now.
	a.mu.Lock()
	delete(a.memo, u)
	a.mu.Unlock()

	return &updated, nil
}

func isNotFound(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
