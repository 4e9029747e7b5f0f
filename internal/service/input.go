package service

import (
	"strings"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultRequirements = "None"
	PlaceholderPhotoURL = "https://via.placeholder.com/400x300?text=Bike+Parking"
)

// CoordinatesInput is the {lat, lng} pair clients send. It is stored transposed as
// a GeoJSON [lng, lat] point.
type CoordinatesInput struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" binding:"required,min=-180,max=180"`
}

func (c *CoordinatesInput) point() (models.GeoPoint, bool) {
	if c == nil || c.Lat == nil || c.Lng == nil {
		return models.GeoPoint{}, false
	}
	return models.NewPoint(*c.Lat, *c.Lng), true
}

type LocationInput struct {
	Address      string            `json:"address" binding:"required,notblank"`
	District     string            `json:"district" binding:"required,notblank"`
	Neighborhood string            `json:"neighborhood" binding:"required,notblank"`
	PostalCode   string            `json:"postalCode"`
	Coordinates  *CoordinatesInput `json:"coordinates" binding:"required"`
}

// DescriptorInput is the request body for creating a facility or submitting a proposal.
// Field rules are enforced when the body is bound.
type DescriptorInput struct {
	Name         string        `json:"name" binding:"required,notblank"`
	Location     LocationInput `json:"location"`
	OpenHours    string        `json:"openHours" binding:"required,notblank"`
	Days         []string      `json:"days" binding:"required,min=1,dive,oneofci=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Capacity     *int          `json:"capacity" binding:"required,min=1"`
	AccessType   string        `json:"accessType" binding:"required,oneofci=public private restricted"`
	Requirements string        `json:"requirements"`
	PhotoURL     string        `json:"photoUrl"`
	Description  string        `json:"description"`
}

// descriptor returns the normalized descriptor with defaults filled in. Only a
// missing photo is checked here, the remaining rules live on the binding tags.
func (in DescriptorInput) descriptor(requirePhoto bool) (models.Descriptor, error) {
	d := models.Descriptor{
		Name: strings.TrimSpace(in.Name),
		Location: models.Location{
			Address:      strings.TrimSpace(in.Location.Address),
			District:     strings.TrimSpace(in.Location.District),
			Neighborhood: strings.TrimSpace(in.Location.Neighborhood),
			PostalCode:   strings.TrimSpace(in.Location.PostalCode),
		},
		OpenHours:    strings.TrimSpace(in.OpenHours),
		AccessType:   models.AccessType(strings.ToLower(strings.TrimSpace(in.AccessType))),
		Requirements: strings.TrimSpace(in.Requirements),
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		Description:  strings.TrimSpace(in.Description),
	}
	d.Days, _ = models.NormalizeDays(in.Days)
	if in.Capacity != nil {
		d.Capacity = *in.Capacity
	}
	if point, ok := in.Location.Coordinates.point(); ok {
		d.Location.Coordinates = point
	}

	if requirePhoto && d.PhotoURL == "" {
		return models.Descriptor{}, apperr.Validation("a photo is required", "photoUrl")
	}

	if d.Requirements == "" {
		d.Requirements = DefaultRequirements
	}
	if d.PhotoURL == "" {
		d.PhotoURL = PlaceholderPhotoURL
	}
	return d, nil
}

// parseID treats a malformed id like an unknown one.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound(what + " not found")
	}
	return oid, nil
}
