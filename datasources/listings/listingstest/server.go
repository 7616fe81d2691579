// Package listingstest provides an in-memory stand-in for the listings REST service.
package listingstest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/n9te9/listings-subgraph/datasources/listings"
)

var Amenities = []listings.Amenity{
	{ID: "am-1", Category: "ACCOMMODATION_DETAILS", Name: "Interdimensional wifi"},
	{ID: "am-2", Category: "SPACE_SURVIVAL", Name: "Oxygen"},
	{ID: "am-3", Category: "OUTDOORS", Name: "Telescope"},
}

var Listings = []listings.Listing{
	{ID: "listing-1", Title: "Cave campsite in snowy MoundiiX", Description: "Enjoy this cozy cave.", PhotoThumbnail: "https://example.com/1.png", NumOfBeds: 2, CostPerNight: 120, HostID: "user-1", LocationType: "CAMPSITE", IsFeatured: true, Amenities: Amenities[:2]},
	{ID: "listing-2", Title: "Cozy yurt in Mraza", Description: "Thoughtfully built.", PhotoThumbnail: "https://example.com/2.png", NumOfBeds: 1, CostPerNight: 592.5, HostID: "user-1", LocationType: "HOUSE", IsFeatured: true, Amenities: Amenities[1:]},
	{ID: "listing-3", Title: "Repurposed mid century aircraft", Description: "Zero gravity lounge.", PhotoThumbnail: "https://example.com/3.png", NumOfBeds: 5, CostPerNight: 313, HostID: "user-2", LocationType: "SPACESHIP", IsFeatured: false, Amenities: Amenities[:1]},
}

// Server serves the listings REST endpoints from memory and counts requests per path.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	listings map[string]listings.Listing
	order    []string
	hits     map[string]int
	nextID   int
}

func NewServer(seed ...listings.Listing) *Server {
	if len(seed) == 0 {
		seed = Listings
	}
	s := &Server{
		listings: make(map[string]listings.Listing),
		hits:     make(map[string]int),
	}
	for _, l := range seed {
		s.listings[l.ID] = l
		s.order = append(s.order, l.ID)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /featured-listings", s.featured)
	mux.HandleFunc("GET /listings", s.search)
	mux.HandleFunc("POST /listings", s.create)
	mux.HandleFunc("GET /listings/{id}", s.listing)
	mux.HandleFunc("PATCH /listings/{id}", s.update)
	mux.HandleFunc("GET /listings/{id}/totalCost", s.totalCost)
	mux.HandleFunc("GET /user/{userId}/listings", s.hostListings)
	mux.HandleFunc("GET /listing/amenities", s.amenities)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return s
}

// Hits returns how many requests were received for method and path, e.g. "GET /listings/listing-1".
func (s *Server) Hits(methodAndPath string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[methodAndPath]
}

func (s *Server) all() []listings.Listing {
	out := make([]listings.Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listings[id])
	}
	return out
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []listings.Listing
	for _, l := range s.all() {
		if l.IsFeatured {
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	numOfBeds, _ := strconv.Atoi(q.Get("numOfBeds"))
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	var out []listings.Listing
	for _, l := range s.all() {
		if int(l.NumOfBeds) >= numOfBeds {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b listings.Listing) int {
		if q.Get("sortBy") == "COST_DESC" {
			return cmp.Compare(b.CostPerNight, a.CostPerNight)
		}
		return cmp.Compare(a.CostPerNight, b.CostPerNight)
	})

	start := min((page-1)*limit, len(out))
	end := min(start+limit, len(out))
	writeJSON(w, http.StatusOK, out[start:end])
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "listing not found"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) totalCost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "listing not found"})
		return
	}
	in, err1 := time.Parse("2006-01-02", r.URL.Query().Get("checkInDate"))
	out, err2 := time.Parse("2006-01-02", r.URL.Query().Get("checkOutDate"))
	if err1 != nil || err2 != nil || !out.After(in) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid dates"})
		return
	}
	nights := out.Sub(in).Hours() / 24
	writeJSON(w, http.StatusOK, map[string]float64{"totalCost": nights * l.CostPerNight})
}

func (s *Server) hostListings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []listings.Listing{}
	for _, l := range s.all() {
		if l.HostID == r.PathValue("userId") {
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) amenities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Amenities)
}

func (s *Server) amenitiesByID(ids []string) []listings.Amenity {
	out := []listings.Amenity{}
	for _, a := range Amenities {
		if slices.Contains(ids, a.ID) {
			out = append(out, a)
		}
	}
	return out
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Listing listings.NewListing `json:"listing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	if strings.TrimSpace(body.Listing.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	l := listings.Listing{
		ID:             "new-" + strconv.Itoa(s.nextID),
		Title:          body.Listing.Title,
		Description:    body.Listing.Description,
		PhotoThumbnail: body.Listing.PhotoThumbnail,
		NumOfBeds:      body.Listing.NumOfBeds,
		CostPerNight:   body.Listing.CostPerNight,
		HostID:         body.Listing.HostID,
		LocationType:   body.Listing.LocationType,
		Amenities:      s.amenitiesByID(body.Listing.Amenities),
	}
	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Listing listings.ListingUpdate `json:"listing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "listing not found"})
		return
	}
	u := body.Listing
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.PhotoThumbnail != nil {
		l.PhotoThumbnail = *u.PhotoThumbnail
	}
	if u.NumOfBeds != nil {
		l.NumOfBeds = *u.NumOfBeds
	}
	if u.CostPerNight != nil {
		l.CostPerNight = *u.CostPerNight
	}
	if u.LocationType != nil {
		l.LocationType = *u.LocationType
	}
	if u.Amenities != nil {
		l.Amenities = s.amenitiesByID(*u.Amenities)
	}
	s.listings[l.ID] = l
	writeJSON(w, http.StatusOK, l)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
