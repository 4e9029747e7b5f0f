package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/apperr"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/geo"
	"bike-parking-api-server/internal/models"
	"bike-parking-api-server/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Zócalo, Mexico City
const centerLat, centerLng = 19.4326, -99.1332

func descriptor(name string, lat, lng float64) models.Descriptor {
	return models.Descriptor{
		Name: name,
		Location: models.Location{
			Address:      "Av. Juárez 10",
			District:     "Cuauhtémoc",
			Neighborhood: "Centro",
			Coordinates:  models.NewPoint(lat, lng),
		},
		OpenHours:  "08:00-20:00",
		Days:       []string{"Monday", "Friday"},
		Capacity:   12,
		AccessType: models.AccessPublic,
		PhotoURL:   "https://img.example.com/a.jpg",
	}
}

func addFacility(t *testing.T, s *MemoryStore, name string, lat, lng float64, status models.FacilityStatus) *models.Facility {
	t.Helper()
	f := &models.Facility{Descriptor: descriptor(name, lat, lng), Status: status, CreatedAt: time.Now()}
	require.NoError(t, s.CreateFacility(context.Background(), f))
	return f
}

func addMember(t *testing.T, s *MemoryStore, email string) *models.Account {
	t.Helper()
	a := &models.Account{Name: "Ana", Email: email, Role: models.RoleMember, Status: models.AccountActive, RegisteredAt: time.Now()}
	require.NoError(t, s.CreateAccount(context.Background(), a))
	return a
}

func names(fs []models.Facility) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}

func TestMemoryStore_AccountEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ana := addMember(t, s, "ana@example.com")

	err := s.CreateAccount(ctx, &models.Account{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	bob := addMember(t, s, "bob@example.com")
	taken := "Ana@Example.com"
	_, err = s.UpdateAccount(ctx, bob.ID, models.AccountUpdate{Email: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.GetAccountByEmail(ctx, "ANA@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)

	_, err = s.GetAccount(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryStore_ListAccountsFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	addMember(t, s, "a@example.com")
	addMember(t, s, "b@example.com")
	require.NoError(t, s.CreateAccount(ctx, &models.Account{Email: "root@example.com", Role: models.RoleAdmin}))

	members, err := s.ListAccounts(ctx, store.AccountFilter{ExcludeRole: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, members, 2)

	admins, err := s.ListAccounts(ctx, store.AccountFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)
}

func TestMemoryStore_Nearby(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	addFacility(t, s, "here", centerLat, centerLng, models.FacilityActive)
	addFacility(t, s, "bellas-artes", 19.4352, -99.1412, models.FacilityActive) // ~900 m
	addFacility(t, s, "chapultepec", 19.4204, -99.1819, models.FacilityActive)  // ~5.3 km
	addFacility(t, s, "closed", 19.4330, -99.1340, models.FacilityMaintenance)
	addFacility(t, s, "off", 19.4331, -99.1335, models.FacilityInactive)

	got, err := s.NearbyFacilities(ctx, models.NewPoint(centerLat, centerLng), store.DefaultNearbyMeters)
	require.NoError(t, err)
	assert.Equal(t, []string{"here", "bellas-artes"}, names(got))

	got, err = s.NearbyFacilities(ctx, models.NewPoint(centerLat, centerLng), 10000)
	require.NoError(t, err)
	assert.Equal(t, []string{"here", "bellas-artes", "chapultepec"}, names(got))

	for _, f := range got {
		d := geo.Distance(centerLat, centerLng, f.Location.Coordinates.Lat(), f.Location.Coordinates.Lng())
		assert.LessOrEqual(t, d, 10000.0)
		assert.Equal(t, models.FacilityActive, f.Status)
	}
}

func TestMemoryStore_UpdateFacilityReindexes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f := addFacility(t, s, "mobile", centerLat, centerLng, models.FacilityActive)

	far := models.NewPoint(20.6597, -103.3496) // Guadalajara
	updated, err := s.UpdateFacility(ctx, f.ID, models.FacilityPatch{Coordinates: &far, District: "Centro GDL"})
	require.NoError(t, err)
	assert.Equal(t, "Centro GDL", updated.Location.District)
	assert.Equal(t, "Av. Juárez 10", updated.Location.Address)

	got, err := s.NearbyFacilities(ctx, models.NewPoint(centerLat, centerLng), 5000)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.NearbyFacilities(ctx, far, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"mobile"}, names(got))

	require.NoError(t, s.DeleteFacility(ctx, f.ID))
	got, err = s.NearbyFacilities(ctx, far, 100)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, s.DeleteFacility(ctx, f.ID), apperr.ErrNotFound)
}

func TestMemoryStore_ListFacilitiesFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	addFacility(t, s, "a", centerLat, centerLng, models.FacilityActive)
	time.Sleep(time.Millisecond)
	addFacility(t, s, "b", centerLat, centerLng, models.FacilityInactive)

	all, err := s.ListFacilities(ctx, store.FacilityFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(all), "newest first")

	active, err := s.ListFacilities(ctx, store.FacilityFilter{Status: models.FacilityActive})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(active))

	none, err := s.ListFacilities(ctx, store.FacilityFilter{District: "Coyoacán"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func submit(t *testing.T, s *MemoryStore, by primitive.ObjectID) *models.Proposal {
	t.Helper()
	p := &models.Proposal{
		Descriptor:  descriptor("propuesta", centerLat, centerLng),
		Status:      models.ProposalPending,
		SubmittedBy: by,
		SubmittedAt: time.Now(),
	}
	require.NoError(t, s.CreateProposal(context.Background(), p))
	return p
}

func TestMemoryStore_ApproveProposal(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	member := addMember(t, s, "ana@example.com")
	admin := primitive.NewObjectID()
	p := submit(t, s, member.ID)

	at := time.Now()
	reviewed, f, err := s.ApproveProposal(ctx, p.ID, admin, at)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalApproved, reviewed.Status)
	assert.Equal(t, admin, *reviewed.ReviewedBy)

	assert.Equal(t, models.FacilityActive, f.Status)
	assert.Equal(t, admin, f.CreatedBy)
	assert.Equal(t, p.ID, *f.SourceProposalID)
	assert.Equal(t, p.Descriptor, f.Descriptor)

	_, err = s.GetProposal(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stored, err := s.GetFacility(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "propuesta", stored.Name)

	credited, err := s.GetAccount(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, credited.FacilitiesAdded)

	// a second review of the same proposal
	_, _, err = s.ApproveProposal(ctx, p.ID, admin, at)
	assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)
	_, err = s.RejectProposal(ctx, p.ID, admin, at)
	assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)

	all, err := s.ListFacilities(ctx, store.FacilityFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStore_RejectProposal(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := submit(t, s, primitive.NewObjectID())

	reviewed, err := s.RejectProposal(ctx, p.ID, primitive.NewObjectID(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ProposalRejected, reviewed.Status)

	_, err = s.GetProposal(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	facilities, err := s.ListFacilities(ctx, store.FacilityFilter{})
	require.NoError(t, err)
	assert.Empty(t, facilities)

	_, _, err = s.ApproveProposal(ctx, p.ID, primitive.NewObjectID(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)

	_, _, err = s.ApproveProposal(ctx, primitive.NewObjectID(), primitive.NewObjectID(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryStore_ConcurrentReviews(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := submit(t, s, primitive.NewObjectID())

	const reviewers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, _, err = s.ApproveProposal(ctx, p.ID, primitive.NewObjectID(), time.Now())
			} else {
				_, err = s.RejectProposal(ctx, p.ID, primitive.NewObjectID(), time.Now())
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperr.ErrAlreadyReviewed)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	facilities, err := s.ListFacilities(ctx, store.FacilityFilter{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(facilities), 1)
}

func TestMemoryStore_ListProposals(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	ana, bob := primitive.NewObjectID(), primitive.NewObjectID()
	submit(t, s, ana)
	time.Sleep(time.Millisecond)
	latest := submit(t, s, bob)

	all, err := s.ListProposals(ctx, store.ProposalFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, latest.ID, all[0].ID)

	own, err := s.ListProposals(ctx, store.ProposalFilter{SubmittedBy: &ana})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, ana, own[0].SubmittedBy)

	approved, err := s.ListProposals(ctx, store.ProposalFilter{Status: models.ProposalApproved})
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	hasher := auth.NewHasher(bcrypt.MinCost)
	cfg := config.AdminConfig{Email: "Root@Example.com", Name: "Administrator", Password: "changeme"}

	require.NoError(t, SeedAdmin(ctx, s, hasher, cfg))
	require.NoError(t, SeedAdmin(ctx, s, hasher, cfg))

	admins, err := s.ListAccounts(ctx, store.AccountFilter{Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@example.com", admins[0].Email)
	assert.True(t, hasher.CheckPasswordHash("changeme", admins[0].PasswordHash))

	empty := NewMemoryStore()
	require.NoError(t, SeedAdmin(ctx, empty, hasher, config.AdminConfig{}))
	none, err := empty.ListAccounts(ctx, store.AccountFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	hasher := auth.NewHasher(bcrypt.MinCost)

	_, _, err := EnsureAdmin(ctx, s, hasher, "Ops", "ops@example.com", "123")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	admin, created, err := EnsureAdmin(ctx, s, hasher, "Ops", " Ops@Example.com ", "s3cret!")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "ops@example.com", admin.Email)

	member := &models.Account{Name: "Ana", Email: "ana@example.com", Role: models.RoleMember, Status: models.AccountInactive}
	require.NoError(t, s.CreateAccount(ctx, member))

	promoted, created, err := EnsureAdmin(ctx, s, hasher, "", "ana@example.com", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, member.ID, promoted.ID)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	assert.Equal(t, models.AccountActive, promoted.Status)
}
