package service

import (
	"context"
	"strings"
	"time"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/logger"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProposalService runs the review workflow: pending proposals are either approved,
// which materializes a facility, or rejected. Both outcomes remove the proposal.
type ProposalService struct {
	proposals store.ProposalStore
	lookup    store.AccountLookup
	now       func() time.Time
}

func NewProposalService(proposals store.ProposalStore, lookup store.AccountLookup) *ProposalService {
	return &ProposalService{proposals: proposals, lookup: lookup, now: time.Now}
}

// Submit stores a pending proposal. A photo is mandatory.
func (s *ProposalService) Submit(ctx context.Context, actor *models.Account, in DescriptorInput) (*models.Proposal, error) {
	d, err := in.descriptor(true)
	if err != nil {
		return nil, err
	}

	p := &models.Proposal{
		Descriptor:  d,
		Status:      models.ProposalPending,
		SubmittedBy: actor.ID,
		SubmittedAt: s.now(),
	}
	if err := s.proposals.CreateProposal(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("Proposal submitted", "proposalId", p.ID.Hex(), "submittedBy", actor.ID.Hex())
	return p, nil
}

// List returns every proposal to admins and only their own to members, newest first.
func (s *ProposalService) List(ctx context.Context, actor *models.Account, status string) ([]models.ProposalView, error) {
	filter := store.ProposalFilter{Status: models.ProposalStatus(strings.ToLower(status))}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("invalid filter", "status")
	}
	if !actor.IsAdmin() {
		filter.SubmittedBy = &actor.ID
	}

	proposals, err := s.proposals.ListProposals(ctx, filter)
	if err != nil {
		return nil, err
	}

	var ids []primitive.ObjectID
	for _, p := range proposals {
		ids = append(ids, p.SubmittedBy)
		if p.ReviewedBy != nil {
			ids = append(ids, *p.ReviewedBy)
		}
	}
	summaries, err := s.lookup.AccountSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProposalView, 0, len(proposals))
	for _, p := range proposals {
		view := models.ProposalView{Proposal: p}
		if sub, ok := summaries[p.SubmittedBy]; ok {
			view.Submitter = &sub
		}
		if p.ReviewedBy != nil {
			if rev, ok := summaries[*p.ReviewedBy]; ok {
				view.Reviewer = &rev
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Approve turns a pending proposal into an active facility created by actor.
func (s *ProposalService) Approve(ctx context.Context, actor *models.Account, id string) (*models.Facility, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can review proposals")
	}
	oid, err := parseID(id, "proposal")
	if err != nil {
		return nil, err
	}

	_, f, err := s.proposals.ApproveProposal(ctx, oid, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	logger.Info("Proposal approved", "proposalId", oid.Hex(), "facilityId", f.ID.Hex(), "reviewer", actor.ID.Hex())
	return f, nil
}

// Reject discards a pending proposal. The reason is echoed back but never stored.
func (s *ProposalService) Reject(ctx context.Context, actor *models.Account, id, reason string) (*models.Proposal, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("only administrators can review proposals")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("a rejection reason is required", "reason")
	}
	oid, err := parseID(id, "proposal")
	if err != nil {
		return nil, err
	}

	p, err := s.proposals.RejectProposal(ctx, oid, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	p.RejectionReason = reason
	logger.Info("Proposal rejected", "proposalId", oid.Hex(), "reviewer", actor.ID.Hex())
	return p, nil
}

// Withdraw deletes a proposal in any state. Only its submitter or an admin may do so.
func (s *ProposalService) Withdraw(ctx context.Context, actor *models.Account, id string) error {
	oid, err := parseID(id, "proposal")
	if err != nil {
		return err
	}
	p, err := s.proposals.GetProposal(ctx, oid)
	if err != nil {
		return err
	}
	if p.SubmittedBy != actor.ID && !actor.IsAdmin() {
		return apperr.Forbidden("you can only withdraw your own proposals")
	}
	return s.proposals.DeleteProposal(ctx, oid)
}
