package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalPending, ProposalApproved, ProposalRejected:
		return true
	}
	return false
}

// Proposal is a member-submitted candidate facility awaiting review.
// A stored proposal is normally pending; approved/rejected only appear while a
// review is being finished and are swept by the reconciler.
type Proposal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Descriptor  `bson:",inline"`
	Status      ProposalStatus      `bson:"status" json:"status"`
	SubmittedBy primitive.ObjectID  `bson:"submittedBy" json:"submittedBy"`
	SubmittedAt time.Time           `bson:"submittedAt" json:"submittedAt"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	// Never persisted: it only travels back in the reject response.
	RejectionReason string `bson:"-" json:"rejectionReason,omitempty"`
}

func (p Proposal) Clone() Proposal {
	out := p
	out.Descriptor = p.Descriptor.Clone()
	if p.ReviewedBy != nil {
		id := *p.ReviewedBy
		out.ReviewedBy = &id
	}
	if p.ReviewedAt != nil {
		at := *p.ReviewedAt
		out.ReviewedAt = &at
	}
	return out
}

// ToFacility materializes the approved facility for this proposal.
func (p Proposal) ToFacility(approver primitive.ObjectID, at time.Time) Facility {
	src := p.ID
	return Facility{
		ID:               primitive.NewObjectID(),
		Descriptor:       p.Descriptor.Clone(),
		Status:           FacilityActive,
		CreatedBy:        approver,
		SourceProposalID: &src,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
}

// MarkReviewed stamps the review outcome on p.
func (p *Proposal) MarkReviewed(outcome ProposalStatus, reviewer primitive.ObjectID, at time.Time) {
	p.Status = outcome
	p.ReviewedBy = &reviewer
	p.ReviewedAt = &at
}

// ProposalReview is the ledger entry left behind once a proposal has been resolved.
type ProposalReview struct {
	ProposalID primitive.ObjectID `bson:"_id" json:"proposalId"`
	Outcome    ProposalStatus     `bson:"outcome" json:"outcome"`
	ReviewedBy primitive.ObjectID `bson:"reviewedBy" json:"reviewedBy"`
	ReviewedAt time.Time          `bson:"reviewedAt" json:"reviewedAt"`
}

// ProposalView joins the submitter and reviewer summaries for listing.
type ProposalView struct {
	Proposal
	Submitter *AccountSummary `json:"submitter,omitempty"`
	Reviewer  *AccountSummary `json:"reviewer,omitempty"`
}
