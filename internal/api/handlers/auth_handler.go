// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"net/http"

	"bike-parking-api-server/internal/api/middleware"
	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Accounts *service.AccountService
}

// Signup registers a member account and returns a token for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	sess, err := h.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   sess.Token,
		"user":    sess.Account,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	sess, err := h.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   sess.Token,
		"user":    sess.Account,
	})
}

// Me returns the caller's own account.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	account, err := h.Accounts.Me(c.Request.Context(), caller.ID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"user": account})
}
