// server/internal/api/handlers/facility_handler.go
package handlers

import (
	"net/http"

	"bike-parking-api-server/internal/api/middleware"
	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

type FacilityHandler struct {
	Facilities *service.FacilityService
}

// nearbyURI holds the /nearby/:lat/:lng path. Non-finite values fail the range tags.
type nearbyURI struct {
	Lat *float64 `uri:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `uri:"lng" binding:"required,min=-180,max=180"`
}

// maxDistance is capped at half the Earth's circumference, in meters.
type nearbyQuery struct {
	MaxDistance float64 `form:"maxDistance" binding:"omitempty,gt=0,max=20037509"`
}

// CreateFacility adds an active facility owned by the calling admin.
func (h *FacilityHandler) CreateFacility(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	var req service.DescriptorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	facility, err := h.Facilities.Create(c.Request.Context(), caller, req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusCreated, gin.H{"message": "Facility created successfully", "facility": facility})
}

// GetAllFacilities lists facilities, optionally filtered by ?status=&type=&district=.
func (h *FacilityHandler) GetAllFacilities(c *gin.Context) {
	var q service.FacilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BindError(c, err)
		return
	}

	facilities, err := h.Facilities.List(c.Request.Context(), q)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"count": len(facilities), "facilities": facilities})
}

// GetNearbyFacilities lists active facilities around /nearby/:lat/:lng, nearest first.
func (h *FacilityHandler) GetNearbyFacilities(c *gin.Context) {
	var uri nearbyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respond.BindError(c, err)
		return
	}
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BindError(c, err)
		return
	}

	facilities, err := h.Facilities.Nearby(c.Request.Context(), *uri.Lat, *uri.Lng, q.MaxDistance)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"count": len(facilities), "facilities": facilities})
}

// GetFacilityByID returns one facility with its creator.
func (h *FacilityHandler) GetFacilityByID(c *gin.Context) {
	facility, err := h.Facilities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"facility": facility})
}

// UpdateFacility applies a partial update; empty fields are left untouched.
func (h *FacilityHandler) UpdateFacility(c *gin.Context) {
	var req service.FacilityUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	facility, err := h.Facilities.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"message": "Facility updated successfully", "facility": facility})
}

func (h *FacilityHandler) DeleteFacility(c *gin.Context) {
	if err := h.Facilities.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"message": "Facility deleted successfully"})
}
