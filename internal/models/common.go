// server/internal/models/common.go
package models

import "strings"

// GeoPoint is a GeoJSON point. Coordinates are always [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewPoint builds a point from the (lat, lng) order callers usually have at hand.
func NewPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Lng() float64 { return p.Coordinates[0] }
func (p GeoPoint) Lat() float64 { return p.Coordinates[1] }

// Valid reports whether p is a well-formed point inside WGS84 bounds.
func (p GeoPoint) Valid() bool {
	if p.Type != "Point" || len(p.Coordinates) != 2 {
		return false
	}
	return ValidLatLng(p.Lat(), p.Lng())
}

func ValidLatLng(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Location is the address block of a facility or proposal.
type Location struct {
	Address      string   `bson:"address" json:"address"`
	District     string   `bson:"district" json:"district"`
	Neighborhood string   `bson:"neighborhood" json:"neighborhood"`
	PostalCode   string   `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	Coordinates  GeoPoint `bson:"coordinates" json:"coordinates"`
}

type AccessType string

const (
	AccessPublic     AccessType = "public"
	AccessPrivate    AccessType = "private"
	AccessRestricted AccessType = "restricted"
)

func (t AccessType) Valid() bool {
	switch t {
	case AccessPublic, AccessPrivate, AccessRestricted:
		return true
	}
	return false
}

// Weekdays is the canonical set, in week order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// NormalizeDays maps names case-insensitively onto the canonical set, drops duplicates
// and sorts them in week order. Unknown names are returned in invalid.
func NormalizeDays(in []string) (days []string, invalid []string) {
	seen := make(map[string]bool, len(in))
	for _, d := range in {
		canon := ""
		for _, w := range Weekdays {
			if strings.EqualFold(strings.TrimSpace(d), w) {
				canon = w
				break
			}
		}
		if canon == "" {
			invalid = append(invalid, d)
			continue
		}
		seen[canon] = true
	}
	for _, w := range Weekdays {
		if seen[w] {
			days = append(days, w)
		}
	}
	return days, invalid
}

// Descriptor holds the descriptive and location fields shared by facilities and proposals.
type Descriptor struct {
	Name         string     `bson:"name" json:"name"`
	Location     Location   `bson:"location" json:"location"`
	OpenHours    string     `bson:"openHours" json:"openHours"`
	Days         []string   `bson:"days" json:"days"`
	Capacity     int        `bson:"capacity" json:"capacity"`
	AccessType   AccessType `bson:"accessType" json:"accessType"`
	Requirements string     `bson:"requirements" json:"requirements"`
	PhotoURL     string     `bson:"photoUrl" json:"photoUrl"`
	Description  string     `bson:"description" json:"description"`
}

// Clone returns a deep copy.
func (d Descriptor) Clone() Descriptor {
	out := d
	out.Days = append([]string(nil), d.Days...)
	out.Location.Coordinates.Coordinates = append([]float64(nil), d.Location.Coordinates.Coordinates...)
	return out
}
