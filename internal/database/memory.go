// server/internal/database/memory.go
package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/geo"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"github.com/tidwall/rtree"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process. A single mutex covers each
// operation, so review claims and their side effects are atomic.
type MemoryStore struct {
	mu         sync.Mutex
	accounts   map[primitive.ObjectID]models.Account
	facilities map[primitive.ObjectID]models.Facility
	proposals  map[primitive.ObjectID]models.Proposal
	reviews    map[primitive.ObjectID]models.ProposalReview
	points     rtree.RTreeG[primitive.ObjectID]
	now        func() time.Time
}

var _ store.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:   make(map[primitive.ObjectID]models.Account),
		facilities: make(map[primitive.ObjectID]models.Facility),
		proposals:  make(map[primitive.ObjectID]models.Proposal),
		reviews:    make(map[primitive.ObjectID]models.ProposalReview),
		now:        time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return ctx.Err() }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Accounts

func (s *MemoryStore) emailTaken(email string, except primitive.ObjectID) bool {
	for id, a := range s.accounts {
		if id != except && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(a.Email, primitive.NilObjectID) {
		return apperr.Conflict("email already registered")
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.accounts[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAccount(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &a, nil
}

func (s *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (s *MemoryStore) ListAccounts(ctx context.Context, filter store.AccountFilter) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Account{}
	for _, a := range s.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		if filter.ExcludeRole != "" && a.Role == filter.ExcludeRole {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out, nil
}

func (s *MemoryStore) UpdateAccount(ctx context.Context, id primitive.ObjectID, update models.AccountUpdate) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	if update.Email != nil && s.emailTaken(*update.Email, id) {
		return nil, apperr.Conflict("email already registered")
	}
	update.Apply(&a)
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	return &a, nil
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return apperr.NotFound("user not found")
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) AccountSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.AccountSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[primitive.ObjectID]models.AccountSummary, len(ids))
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out[id] = a.Summary()
		}
	}
	return out, nil
}

// Facilities

func pointRect(p models.GeoPoint) [2]float64 {
	return [2]float64{p.Lng(), p.Lat()}
}

func (s *MemoryStore) CreateFacility(ctx context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	s.insertFacility(f.Clone())
	return nil
}

// insertFacility stores f and indexes its point. Callers hold the lock.
func (s *MemoryStore) insertFacility(f models.Facility) {
	s.facilities[f.ID] = f
	pt := pointRect(f.Location.Coordinates)
	s.points.Insert(pt, pt, f.ID)
}

func (s *MemoryStore) GetFacility(ctx context.Context, id primitive.ObjectID) (*models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facilities[id]
	if !ok {
		return nil, apperr.NotFound("facility not found")
	}
	f = f.Clone()
	return &f, nil
}

func (s *MemoryStore) ListFacilities(ctx context.Context, filter store.FacilityFilter) ([]models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Facility{}
	for _, f := range s.facilities {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.AccessType != "" && f.AccessType != filter.AccessType {
			continue
		}
		if filter.District != "" && f.Location.District != filter.District {
			continue
		}
		out = append(out, f.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateFacility(ctx context.Context, id primitive.ObjectID, patch models.FacilityPatch) (*models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facilities[id]
	if !ok {
		return nil, apperr.NotFound("facility not found")
	}
	old := pointRect(f.Location.Coordinates)
	f = f.Clone()
	patch.Apply(&f)
	f.UpdatedAt = s.now()
	s.facilities[id] = f

	if pt := pointRect(f.Location.Coordinates); pt != old {
		s.points.Delete(old, old, id)
		s.points.Insert(pt, pt, id)
	}
	out := f.Clone()
	return &out, nil
}

func (s *MemoryStore) DeleteFacility(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facilities[id]
	if !ok {
		return apperr.NotFound("facility not found")
	}
	pt := pointRect(f.Location.Coordinates)
	s.points.Delete(pt, pt, id)
	delete(s.facilities, id)
	return nil
}

// NearbyFacilities narrows candidates through the R-tree, then applies the exact
// great-circle cut.
func (s *MemoryStore) NearbyFacilities(ctx context.Context, center models.GeoPoint, maxMeters float64) ([]models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type hit struct {
		f    models.Facility
		dist float64
	}
	var hits []hit
	seen := make(map[primitive.ObjectID]bool)
	for _, r := range geo.Bounds(center.Lat(), center.Lng(), maxMeters) {
		s.points.Search(r.Min, r.Max, func(min, max [2]float64, id primitive.ObjectID) bool {
			if seen[id] {
				return true
			}
			seen[id] = true
			f := s.facilities[id]
			if f.Status != models.FacilityActive {
				return true
			}
			d := geo.Distance(center.Lat(), center.Lng(), min[1], min[0])
			if d <= maxMeters {
				hits = append(hits, hit{f: f, dist: d})
			}
			return true
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]models.Facility, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.f.Clone())
	}
	return out, nil
}

// Proposals

func (s *MemoryStore) CreateProposal(ctx context.Context, p *models.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.proposals[p.ID] = p.Clone()
	return nil
}

func (s *MemoryStore) GetProposal(ctx context.Context, id primitive.ObjectID) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, apperr.NotFound("proposal not found")
	}
	p = p.Clone()
	return &p, nil
}

func (s *MemoryStore) ListProposals(ctx context.Context, filter store.ProposalFilter) ([]models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Proposal{}
	for _, p := range s.proposals {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.SubmittedBy != nil && p.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteProposal(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[id]; !ok {
		return apperr.NotFound("proposal not found")
	}
	delete(s.proposals, id)
	return nil
}

// claimPending returns the pending proposal or the error explaining why it cannot be
// reviewed. Callers hold the lock.
func (s *MemoryStore) claimPending(id primitive.ObjectID) (models.Proposal, error) {
	p, ok := s.proposals[id]
	if !ok {
		if _, reviewed := s.reviews[id]; reviewed {
			return models.Proposal{}, errAlreadyReviewed()
		}
		return models.Proposal{}, apperr.NotFound("proposal not found")
	}
	if p.Status != models.ProposalPending {
		return models.Proposal{}, errAlreadyReviewed()
	}
	return p.Clone(), nil
}

func (s *MemoryStore) ApproveProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, *models.Facility, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.claimPending(id)
	if err != nil {
		return nil, nil, err
	}
	p.MarkReviewed(models.ProposalApproved, reviewer, at)

	f := p.ToFacility(reviewer, at)
	s.insertFacility(f.Clone())
	if submitter, ok := s.accounts[p.SubmittedBy]; ok {
		submitter.FacilitiesAdded++
		s.accounts[submitter.ID] = submitter
	}
	s.reviews[id] = models.ProposalReview{ProposalID: id, Outcome: models.ProposalApproved, ReviewedBy: reviewer, ReviewedAt: at}
	delete(s.proposals, id)
	return &p, &f, nil
}

func (s *MemoryStore) RejectProposal(ctx context.Context, id, reviewer primitive.ObjectID, at time.Time) (*models.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.claimPending(id)
	if err != nil {
		return nil, err
	}
	p.MarkReviewed(models.ProposalRejected, reviewer, at)
	s.reviews[id] = models.ProposalReview{ProposalID: id, Outcome: models.ProposalRejected, ReviewedBy: reviewer, ReviewedAt: at}
	delete(s.proposals, id)
	return &p, nil
}

// ReconcileProposals has nothing to do here: reviews never stop half way.
func (s *MemoryStore) ReconcileProposals(ctx context.Context) (int, error) {
	return 0, nil
}
