package service

import (
	"context"
	"time"

	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockAccountStore is a testify mock of store.AccountStore.
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) CreateAccount(ctx context.Context, a *models.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockAccountStore) GetAccount(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
func (m *MockAccountStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
func (m *MockAccountStore) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]models.Account, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Account), args.Error(1)
}
func (m *MockAccountStore) UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}
func (m *MockAccountStore) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockAccountStore) AccountSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AccountSummary, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[primitive.ObjectID]models.AccountSummary), args.Error(1)
}

// MockFacilityStore is a testify mock of store.FacilityStore.
type MockFacilityStore struct {
	mock.Mock
}

func (m *MockFacilityStore) CreateFacility(ctx context.Context, f *models.Facility) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFacilityStore) GetFacility(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}
func (m *MockFacilityStore) ListFacilities(ctx context.Context, filter store.FacilityFilter) ([]models.Facility, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Facility), args.Error(1)
}
func (m *MockFacilityStore) UpdateFacility(ctx context.Context, id primitive.ObjectID, patch models.FacilityPatch) (*models.Facility, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Facility), args.Error(1)
}
func (m *MockFacilityStore) DeleteFacility(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockFacilityStore) NearbyFacilities(ctx context.Context, center models.GeoPoint, maxMeters float64) ([]models.Facility, error) {
	args := m.Called(ctx, center, maxMeters)
	return args.Get(0).([]models.Facility), args.Error(1)
}

// MockProposalStore is a testify mock of store.ProposalStore.
type MockProposalStore struct {
	mock.Mock
}

func (m *MockProposalStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProposalStore) GetProposal(ctx context.Context, id primitive.ObjectID) (*models.Proposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}
func (m *MockProposalStore) ListProposals(ctx context.Context, filter store.ProposalFilter) ([]models.Proposal, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Proposal), args.Error(1)
}
func (m *MockProposalStore) DeleteProposal(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockProposalStore) ApproveProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, *models.Facility, error) {
	args := m.Called(ctx, id, reviewer, at)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Proposal), args.Get(1).(*models.Facility), args.Error(2)
}
func (m *MockProposalStore) RejectProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, error) {
	args := m.Called(ctx, id, reviewer, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Proposal), args.Error(1)
}
func (m *MockProposalStore) ReconcileProposals(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
