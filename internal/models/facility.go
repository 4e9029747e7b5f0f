// server/internal/models/facility.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FacilityStatus string

const (
	FacilityActive      FacilityStatus = "active"
	FacilityInactive    FacilityStatus = "inactive"
	FacilityMaintenance FacilityStatus = "maintenance"
)

func (s FacilityStatus) Valid() bool {
	switch s {
	case FacilityActive, FacilityInactive, FacilityMaintenance:
		return true
	}
	return false
}

// Facility is an approved bike-parking location.
type Facility struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Descriptor       `bson:",inline"`
	Status           FacilityStatus      `bson:"status" json:"status"`
	CreatedBy        primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	SourceProposalID *primitive.ObjectID `bson:"sourceProposalId,omitempty" json:"sourceProposalId,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}

func (f Facility) Clone() Facility {
	out := f
	out.Descriptor = f.Descriptor.Clone()
	if f.SourceProposalID != nil {
		id := *f.SourceProposalID
		out.SourceProposalID = &id
	}
	return out
}

// FacilityView is a facility with its creator joined in.
type FacilityView struct {
	Facility
	Creator *AccountSummary `json:"creator,omitempty"`
}

// FacilityPatch is a partial update. Zero values mean "keep the stored value",
// so a field can never be cleared through a patch.
type FacilityPatch struct {
	Name         string
	Address      string
	District     string
	Neighborhood string
	PostalCode   string
	Coordinates  *GeoPoint
	OpenHours    string
	Days         []string
	Capacity     *int
	AccessType   AccessType
	Requirements string
	PhotoURL     string
	Description  string
	Status       FacilityStatus
}

func (p FacilityPatch) IsEmpty() bool {
	return len(p.SetDocument()) == 0
}

// Apply merges the patch into f.
func (p FacilityPatch) Apply(f *Facility) {
	if p.Name != "" {
		f.Name = p.Name
	}
	if p.Address != "" {
		f.Location.Address = p.Address
	}
	if p.District != "" {
		f.Location.District = p.District
	}
	if p.Neighborhood != "" {
		f.Location.Neighborhood = p.Neighborhood
	}
	if p.PostalCode != "" {
		f.Location.PostalCode = p.PostalCode
	}
	if p.Coordinates != nil {
		f.Location.Coordinates = GeoPoint{Type: "Point", Coordinates: append([]float64(nil), p.Coordinates.Coordinates...)}
	}
	if p.OpenHours != "" {
		f.OpenHours = p.OpenHours
	}
	if len(p.Days) > 0 {
		f.Days = append([]string(nil), p.Days...)
	}
	if p.Capacity != nil {
		f.Capacity = *p.Capacity
	}
	if p.AccessType != "" {
		f.AccessType = p.AccessType
	}
	if p.Requirements != "" {
		f.Requirements = p.Requirements
	}
	if p.PhotoURL != "" {
		f.PhotoURL = p.PhotoURL
	}
	if p.Description != "" {
		f.Description = p.Description
	}
	if p.Status != "" {
		f.Status = p.Status
	}
}

// SetDocument renders the patch as a $set document using dotted paths for the location
// block, so untouched nested fields survive.
func (p FacilityPatch) SetDocument() bson.M {
	set := bson.M{}
	put := func(key, val string) {
		if val != "" {
			set[key] = val
		}
	}
	put("name", p.Name)
	put("location.address", p.Address)
	put("location.district", p.District)
	put("location.neighborhood", p.Neighborhood)
	put("location.postalCode", p.PostalCode)
	put("openHours", p.OpenHours)
	put("accessType", string(p.AccessType))
	put("requirements", p.Requirements)
	put("photoUrl", p.PhotoURL)
	put("description", p.Description)
	put("status", string(p.Status))
	if p.Coordinates != nil {
		set["location.coordinates"] = *p.Coordinates
	}
	if len(p.Days) > 0 {
		set["days"] = p.Days
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	return set
}
