// server/internal/api/handlers/user_handler.go
package handlers

import (
	"net/http"

	"bike-parking-api-server/internal/api/middleware"
	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin user-management API and the caller's own profile.
// Administrator accounts are never valid targets of the management endpoints.
type UserHandler struct {
	Accounts *service.AccountService
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	users, err := h.Accounts.ListMembers(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"count": len(users), "users": users})
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.Accounts.GetManaged(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req service.ManagedUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user, err := h.Accounts.UpdateManaged(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Accounts.DeleteManaged(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *UserHandler) ToggleUserStatus(c *gin.Context) {
	user, err := h.Accounts.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	message := "User deactivated successfully"
	if user.Status == models.AccountActive {
		message = "User activated successfully"
	}
	respond.OK(c, http.StatusOK, gin.H{"message": message, "user": user})
}

// UpdateProfile lets any signed-in user change their own name or password.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	user, err := h.Accounts.UpdateProfile(c.Request.Context(), caller, req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
