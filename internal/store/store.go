// Package store declares the persistence contracts the services depend on.
// Implementations live in internal/database (MongoDB and in-memory).
//
// All methods report missing documents as apperr.ErrNotFound, duplicate emails as
// apperr.ErrConflict and lost review races as apperr.ErrAlreadyReviewed.
package store

import (
	"context"
	"time"

	"bike-parking-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultNearbyMeters is the proximity radius used when the caller gives none.
const DefaultNearbyMeters = 5000

type AccountFilter struct {
	Role        models.Role // only this role, when set
	ExcludeRole models.Role // every role but this one, when set
}

type FacilityFilter struct {
	Status     models.FacilityStatus
	AccessType models.AccessType
	District   string
}

type ProposalFilter struct {
	Status      models.ProposalStatus
	SubmittedBy *primitive.ObjectID
}

// AccountLookup is the read-side join used to decorate facilities and proposals.
// Missing ids are simply absent from the result.
type AccountLookup interface {
	AccountSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AccountSummary, error)
}

type AccountStore interface {
	AccountLookup
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]models.Account, error)
	UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, id primitive.ObjectID) error
}

type FacilityStore interface {
	CreateFacility(ctx context.Context, f *models.Facility) error
	GetFacility(ctx context.Context, id primitive.ObjectID) (*models.Facility, error)
	// ListFacilities returns newest-created first.
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]models.Facility, error)
	UpdateFacility(ctx context.Context, id primitive.ObjectID, patch models.FacilityPatch) (*models.Facility, error)
	DeleteFacility(ctx context.Context, id primitive.ObjectID) error
	// NearbyFacilities returns active facilities within maxMeters of center, nearest first.
	NearbyFacilities(ctx context.Context, center models.GeoPoint, maxMeters float64) ([]models.Facility, error)
}

type ProposalStore interface {
	CreateProposal(ctx context.Context, p *models.Proposal) error
	GetProposal(ctx context.Context, id primitive.ObjectID) (*models.Proposal, error)
	// ListProposals returns newest-submitted first.
	ListProposals(ctx context.Context, filter ProposalFilter) ([]models.Proposal, error)
	// DeleteProposal removes the proposal whatever its status.
	DeleteProposal(ctx context.Context, id primitive.ObjectID) error

	// ApproveProposal atomically claims a pending proposal, inserts the facility built
	// from it, credits the submitter and removes the proposal.
	ApproveProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, *models.Facility, error)
	// RejectProposal atomically claims a pending proposal and removes it.
	RejectProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, error)
	// ReconcileProposals finishes reviews that were claimed but never completed.
	ReconcileProposals(ctx context.Context) (int, error)
}

// Store is everything a running server needs from persistence.
type Store interface {
	AccountStore
	FacilityStore
	ProposalStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
