package types

// VenueKind is the resolved category of a location. Cafe and library are mutually exclusive.
type VenueKind string

const (
	VenueCafe    VenueKind = "cafe"
	VenueLibrary VenueKind = "library"
)

// KindFilter selects which venue kinds a caller wants back.
type KindFilter string

const (
	KindAll     KindFilter = "all"
	KindCafe    KindFilter = "cafe"
	KindLibrary KindFilter = "library"
)

// ParseKindFilter maps query text to a KindFilter. Empty input means all.
func ParseKindFilter(s string) (KindFilter, bool) {
	switch KindFilter(s) {
	case "", KindAll:
		return KindAll, true
	case KindCafe, KindLibrary:
		return KindFilter(s), true
	}
	return "", false
}

// Matches reports whether a resolved kind passes the filter.
func (f KindFilter) Matches(kind VenueKind) bool {
	return f == "" || f == KindAll || string(f) == string(kind)
}

// Busyness is the 3-tier crowding estimate.
type Busyness string

const (
	BusynessLow      Busyness = "low"
	BusynessModerate Busyness = "moderate"
	BusynessHigh     Busyness = "high"
)

// Coordinates is a WGS84 point in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceRecord is a raw place as returned by the place-search provider.
type PlaceRecord struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Types               []string `json:"types"`
	Address             string   `json:"address"`
	Latitude            float64  `json:"latitude"`
	Longitude           float64  `json:"longitude"`
	Rating              *float64 `json:"rating,omitempty"`
	RatingCount         *int     `json:"rating_count,omitempty"`
	WeekdayDescriptions []string `json:"weekday_descriptions,omitempty"`
	OpenNow             *bool    `json:"open_now,omitempty"`
	Popularity          *int     `json:"popularity,omitempty"` // 0-100
	DineIn              *bool    `json:"dine_in,omitempty"`
	Takeout             *bool    `json:"takeout,omitempty"`
}

// HasType reports whether the record carries the given raw type tag.
func (p PlaceRecord) HasType(tag string) bool {
	for _, t := range p.Types {
		if t == tag {
			return true
		}
	}
	return false
}

// OpeningHours is the structured hours passthrough of a NormalizedLocation.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekday_descriptions"`
	OpenNow             *bool    `json:"open_now,omitempty"`
}

// NormalizedLocation is the assembled, scored view of a place. It is built per query
// and never modified after it is returned.
type NormalizedLocation struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Kind         VenueKind     `json:"type"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	PlusCode     string        `json:"plus_code,omitempty"`
	Address      string        `json:"address"`
	Busyness     Busyness      `json:"busyness"`
	Likelihood   int           `json:"likelihood"`
	HasWifi      bool          `json:"has_wifi"`
	Distance     *int          `json:"distance,omitempty"`     // meters
	WalkingTime  *int          `json:"walking_time,omitempty"` // minutes
	Rating       *float64      `json:"rating,omitempty"`
	RatingCount  *int          `json:"rating_count,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
}

// LocationView is the request-scoped presentation overlay of a NormalizedLocation.
type LocationView struct {
	NormalizedLocation
	ClosesAt string `json:"closes_at,omitempty"`
}

// LocationsResponse is the body of the locations listing.
type LocationsResponse struct {
	Locations []LocationView `json:"locations"`
	Count     int            `json:"count"`
	Error     string         `json:"error,omitempty"`
}
