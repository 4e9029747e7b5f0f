package handlers

import (
	"net/http"

	"bike-parking-api-server/internal/api/middleware"
	"bike-parking-api-server/internal/api/respond"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	Proposals *service.ProposalService
}

type RejectProposalRequest struct {
	Reason string `json:"reason" binding:"required,notblank"`
}

func (h *ProposalHandler) SubmitProposal(c *gin.Context) {
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

	proposal, err := h.Proposals.Submit(c.Request.Context(), caller, req)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusCreated, gin.H{"message": "Proposal submitted for review", "proposal": proposal})
}

// GetProposals lists the caller's proposals, or all of them for admins.
func (h *ProposalHandler) GetProposals(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	proposals, err := h.Proposals.List(c.Request.Context(), caller, c.Query("status"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"count": len(proposals), "proposals": proposals})
}

func (h *ProposalHandler) ApproveProposal(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	facility, err := h.Proposals.Approve(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"message": "Proposal approved and facility created", "facility": facility})
}

func (h *ProposalHandler) RejectProposal(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	var req RejectProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, err)
		return
	}

	proposal, err := h.Proposals.Reject(c.Request.Context(), caller, c.Param("id"), req.Reason)
	if err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{
		"message":  "Proposal rejected: " + proposal.RejectionReason,
		"proposal": proposal,
	})
}

func (h *ProposalHandler) WithdrawProposal(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respond.Error(c, apperr.Unauthorized("authentication required"))
		return
	}

	if err := h.Proposals.Withdraw(c.Request.Context(), caller, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}

	respond.OK(c, http.StatusOK, gin.H{"message": "Proposal deleted successfully"})
}
