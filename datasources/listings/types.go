package listings

type Amenity struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type Listing struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	PhotoThumbnail string    `json:"photoThumbnail"`
	NumOfBeds      int32     `json:"numOfBeds"`
	CostPerNight   float64   `json:"costPerNight"`
	HostID         string    `json:"hostId"`
	LocationType   string    `json:"locationType"`
	IsFeatured     bool      `json:"isFeatured"`
	Amenities      []Amenity `json:"amenities"`
}

// NewListing is the body of POST listings. Amenities holds amenity ids.
type NewListing struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	PhotoThumbnail string   `json:"photoThumbnail"`
	NumOfBeds      int32    `json:"numOfBeds"`
	CostPerNight   float64  `json:"costPerNight"`
	HostID         string   `json:"hostId"`
	LocationType   string   `json:"locationType"`
	Amenities      []string `json:"amenities"`
}

// ListingUpdate is the body of PATCH listings/{id}; nil fields are left untouched.
type ListingUpdate struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	PhotoThumbnail *string   `json:"photoThumbnail,omitempty"`
	NumOfBeds      *int32    `json:"numOfBeds,omitempty"`
	CostPerNight   *float64  `json:"costPerNight,omitempty"`
	LocationType   *string   `json:"locationType,omitempty"`
	Amenities      *[]string `json:"amenities,omitempty"`
}

type SearchParams struct {
	NumOfBeds int32
	Page      int32
	Limit     int32
	SortBy    string
}

type totalCostResponse struct {
	TotalCost float64 `json:"totalCost"`
}

type listingBody[T any] struct {
	Listing T `json:"listing"`
}
