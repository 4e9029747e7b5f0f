package service

import (
	"context"
	"math"
	"strings"
	"time"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FacilityService struct {
	facilities store.FacilityStore
	lookup     store.AccountLookup
	now        func() time.Time
}

func NewFacilityService(facilities store.FacilityStore, lookup store.AccountLookup) *FacilityService {
	return &FacilityService{facilities: facilities, lookup: lookup, now: time.Now}
}

// FacilityQuery holds the optional list filters, bound from the query string.
type FacilityQuery struct {
	Status     string `form:"status" binding:"omitempty,oneofci=active inactive maintenance"`
	AccessType string `form:"type" binding:"omitempty,oneofci=public private restricted"`
	District   string `form:"district"`
}

// FacilityUpdateInput is a partial update. Absent or empty fields keep their value.
type FacilityUpdateInput struct {
	Name         string              `json:"name"`
	Location     *LocationPatchInput `json:"location"`
	OpenHours    string              `json:"openHours"`
	Days         []string            `json:"days" binding:"omitempty,dive,oneofci=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	Capacity     *int                `json:"capacity" binding:"omitempty,min=1"`
	AccessType   string              `json:"accessType" binding:"omitempty,oneofci=public private restricted"`
	Requirements string              `json:"requirements"`
	PhotoURL     string              `json:"photoUrl"`
	Description  string              `json:"description"`
	Status       string              `json:"status" binding:"omitempty,oneofci=active inactive maintenance"`
}

type LocationPatchInput struct {
	Address      string            `json:"address"`
	District     string            `json:"district"`
	Neighborhood string            `json:"neighborhood"`
	PostalCode   string            `json:"postalCode"`
	Coordinates  *CoordinatesInput `json:"coordinates"`
}

func (in FacilityUpdateInput) patch() (models.FacilityPatch, error) {
	p := models.FacilityPatch{
		Name:         strings.TrimSpace(in.Name),
		OpenHours:    strings.TrimSpace(in.OpenHours),
		Capacity:     in.Capacity,
		AccessType:   models.AccessType(strings.ToLower(strings.TrimSpace(in.AccessType))),
		Requirements: strings.TrimSpace(in.Requirements),
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		Description:  strings.TrimSpace(in.Description),
		Status:       models.FacilityStatus(strings.ToLower(strings.TrimSpace(in.Status))),
	}

	if loc := in.Location; loc != nil {
		p.Address = strings.TrimSpace(loc.Address)
		p.District = strings.TrimSpace(loc.District)
		p.Neighborhood = strings.TrimSpace(loc.Neighborhood)
		p.PostalCode = strings.TrimSpace(loc.PostalCode)
		if point, ok := loc.Coordinates.point(); ok {
			p.Coordinates = &point
		}
	}
	if len(in.Days) > 0 {
		p.Days, _ = models.NormalizeDays(in.Days)
	}

	if p.IsEmpty() {
		return models.FacilityPatch{}, apperr.Validation("no fields to update")
	}
	return p, nil
}

// Create stores a new active facility owned by actor.
func (s *FacilityService) Create(ctx context.Context, actor *models.Account, in DescriptorInput) (*models.Facility, error) {
	d, err := in.descriptor(false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	f := &models.Facility{
		Descriptor: d,
		Status:     models.FacilityActive,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.facilities.CreateFacility(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FacilityService) List(ctx context.Context, q FacilityQuery) ([]models.Facility, error) {
	return s.facilities.ListFacilities(ctx, store.FacilityFilter{
		Status:     models.FacilityStatus(strings.ToLower(strings.TrimSpace(q.Status))),
		AccessType: models.AccessType(strings.ToLower(strings.TrimSpace(q.AccessType))),
		District:   strings.TrimSpace(q.District),
	})
}

// Get returns the facility with its creator joined in.
func (s *FacilityService) Get(ctx context.Context, id string) (*models.FacilityView, error) {
	oid, err := parseID(id, "facility")
	if err != nil {
		return nil, err
	}
	f, err := s.facilities.GetFacility(ctx, oid)
	if err != nil {
		return nil, err
	}

	view := &models.FacilityView{Facility: *f}
	summaries, err := s.lookup.AccountSummaries(ctx, []primitive.ObjectID{f.CreatedBy})
	if err != nil {
		return nil, err
	}
	if creator, ok := summaries[f.CreatedBy]; ok {
		view.Creator = &creator
	}
	return view, nil
}

func (s *FacilityService) Update(ctx context.Context, id string, in FacilityUpdateInput) (*models.Facility, error) {
	oid, err := parseID(id, "facility")
	if err != nil {
		return nil, err
	}
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	return s.facilities.UpdateFacility(ctx, oid, patch)
}

func (s *FacilityService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id, "facility")
	if err != nil {
		return err
	}
	return s.facilities.DeleteFacility(ctx, oid)
}

// Nearby returns active facilities within maxMeters of (lat, lng), nearest first.
// A zero maxMeters means store.DefaultNearbyMeters.
func (s *FacilityService) Nearby(ctx context.Context, lat, lng, maxMeters float64) ([]models.Facility, error) {
	var bad []string
	if !finite(lat) || lat < -90 || lat > 90 {
		bad = append(bad, "lat")
	}
	if !finite(lng) || lng < -180 || lng > 180 {
		bad = append(bad, "lng")
	}
	if !finite(maxMeters) || maxMeters < 0 {
		bad = append(bad, "maxDistance")
	}
	if len(bad) > 0 {
		return nil, apperr.Validation("invalid location", bad...)
	}
	if maxMeters == 0 {
		maxMeters = store.DefaultNearbyMeters
	}
	return s.facilities.NearbyFacilities(ctx, models.NewPoint(lat, lng), maxMeters)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
