package partyservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"notary/internal/models"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	docDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now     = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

type MockCustomerChecker struct {
	mock.Mock
}

func (m *MockCustomerChecker) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPartyStore struct {
	mock.Mock
}

func (m *MockPartyStore) ListByDocument(ctx context.Context, documentID string) ([]models.PartyLink, error) {
	args := m.Called(ctx, documentID)
	links, _ := args.Get(0).([]models.PartyLink)
	return links, args.Error(1)
}

func (m *MockPartyStore) Create(ctx context.Context, link models.PartyLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockPartyStore) Update(ctx context.Context, link models.PartyLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *MockPartyStore) Delete(ctx context.Context, documentID string, customerID string) error {
	return m.Called(ctx, documentID, customerID).Error(0)
}

// memoryStore is a party store that records the order operations arrive in.
type memoryStore struct {
	links map[string]models.PartyLink
	calls []string
}

func newMemoryStore(links ...models.PartyLink) *memoryStore {
	s := &memoryStore{links: map[string]models.PartyLink{}}
	for _, l := range links {
		s.links[l.CustomerID] = l
	}
	return s
}

func (s *memoryStore) ListByDocument(_ context.Context, _ string) ([]models.PartyLink, error) {
	out := make([]models.PartyLink, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (s *memoryStore) Create(_ context.Context, link models.PartyLink) error {
	if _, ok := s.links[link.CustomerID]; ok {
		return models.ErrDuplicatePartyLink
	}
	s.calls = append(s.calls, "create:"+link.CustomerID)
	s.links[link.CustomerID] = link
	return nil
}

func (s *memoryStore) Update(_ context.Context, link models.PartyLink) error {
	s.calls = append(s.calls, "update:"+link.CustomerID)
	s.links[link.CustomerID] = link
	return nil
}

func (s *memoryStore) Delete(_ context.Context, _ string, customerID string) error {
	s.calls = append(s.calls, "remove:"+customerID)
	delete(s.links, customerID)
	return nil
}

type allCustomers struct{}

func (allCustomers) Exists(context.Context, string) (bool, error) { return true, nil }

func link(customerID string, role models.PartyRole) models.PartyLink {
	return models.PartyLink{
		DocumentID:      "doc-1",
		CustomerID:      customerID,
		Role:            role,
		SignatureStatus: models.SignaturePending,
		NotaryDate:      docDate,
	}
}

func newReconciler(customers CustomerChecker, store PartyStore) *Reconciler {
	r := New(slog.New(slog.NewTextHandler(io.Discard, nil)), customers, store, nil)
	r.now = func() time.Time { return now }
	return r
}

func TestPlan_UpdateAndCreate(t *testing.T) {
	t.Parallel()

	current := []models.PartyLink{link("C1", models.RolePartyA)}
	desired := []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyB},
		{CustomerID: "C2", Role: models.RolePartyA},
	}

	plan := Plan("doc-1", current, desired, docDate, now)

	require.Len(t, plan.Update, 1)
	assert.Equal(t, "C1", plan.Update[0].Link.CustomerID)
	assert.Equal(t, models.RolePartyA, plan.Update[0].FromRole)
	assert.Equal(t, models.RolePartyB, plan.Update[0].Link.Role)

	require.Len(t, plan.Create, 1)
	assert.Equal(t, "C2", plan.Create[0].CustomerID)
	assert.Equal(t, models.RolePartyA, plan.Create[0].Role)
	assert.Equal(t, models.SignaturePending, plan.Create[0].SignatureStatus)

	assert.Empty(t, plan.Remove)
}

func TestPlan_Remove(t *testing.T) {
	t.Parallel()

	current := []models.PartyLink{link("C1", models.RolePartyA), link("C2", models.RolePartyB)}
	desired := []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA}}

	plan := Plan("doc-1", current, desired, docDate, now)

	assert.Empty(t, plan.Create)
	assert.Empty(t, plan.Update)
	assert.Equal(t, []models.PartyLinkKey{{DocumentID: "doc-1", CustomerID: "C2"}}, plan.Remove)
}

func TestPlan_EmptyDesiredRemovesAll(t *testing.T) {
	t.Parallel()

	current := []models.PartyLink{link("C1", models.RolePartyA), link("C2", models.RoleNotary)}

	plan := Plan("doc-1", current, nil, docDate, now)

	assert.Len(t, plan.Remove, 2)
	assert.Empty(t, plan.Create)
	assert.Empty(t, plan.Update)
}

func TestPlan_CreateIgnoresSuppliedStatus(t *testing.T) {
	t.Parallel()

	own := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	desired := []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyA, SignatureStatus: models.SignatureSigned},
		{CustomerID: "C2", Role: models.RolePartyB, SignatureStatus: models.SignatureRejected, NotaryDate: own},
	}

	plan := Plan("doc-1", nil, desired, docDate, now)

	require.Len(t, plan.Create, 2)
	for _, c := range plan.Create {
		assert.Equal(t, models.SignaturePending, c.SignatureStatus)
	}
	assert.Equal(t, docDate, plan.Create[0].NotaryDate)
	assert.Equal(t, own, plan.Create[1].NotaryDate)
}

func TestPlan_UpdateCarriesDesiredValues(t *testing.T) {
	t.Parallel()

	own := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	current := []models.PartyLink{link("C1", models.RolePartyA), link("C2", models.RolePartyA)}
	desired := []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyC, SignatureStatus: models.SignatureSigned, NotaryDate: own},
		{CustomerID: "C2", Role: models.RolePartyB},
	}

	plan := Plan("doc-1", current, desired, docDate, now)

	require.Len(t, plan.Update, 2)
	assert.Equal(t, models.SignatureSigned, plan.Update[0].Link.SignatureStatus)
	assert.Equal(t, own, plan.Update[0].Link.NotaryDate)
	assert.Equal(t, models.SignaturePending, plan.Update[1].Link.SignatureStatus)
	assert.Equal(t, docDate, plan.Update[1].Link.NotaryDate)
	assert.Equal(t, now, plan.Update[1].Link.UpdatedAt)
}

func TestPlan_DuplicateCustomerLastWins(t *testing.T) {
	t.Parallel()

	desired := []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyA},
		{CustomerID: "C1", Role: models.RolePartyB},
	}

	plan := Plan("doc-1", nil, desired, docDate, now)

	require.Len(t, plan.Create, 1)
	assert.Equal(t, models.RolePartyB, plan.Create[0].Role)
}

func TestPlan_SameRoleIsNoop(t *testing.T) {
	t.Parallel()

	current := []models.PartyLink{link("C1", models.RolePartyA)}
	desired := []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA, SignatureStatus: models.SignatureSigned}}

	assert.True(t, Plan("doc-1", current, desired, docDate, now).IsEmpty())
}

func TestReconcile_AppliesInOrderAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemoryStore(link("C1", models.RolePartyA), link("C3", models.RolePartyC))
	r := newReconciler(allCustomers{}, store)

	desired := []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyB},
		{CustomerID: "C2", Role: models.RolePartyA},
	}

	plan, err := r.Reconcile(ctx, "doc-1", desired, docDate)
	require.NoError(t, err)
	assert.Len(t, plan.Create, 1)
	assert.Len(t, plan.Update, 1)
	assert.Len(t, plan.Remove, 1)
	assert.Equal(t, []string{"create:C2", "update:C1", "remove:C3"}, store.calls)

	plan, err = r.Reconcile(ctx, "doc-1", desired, docDate)
	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
	assert.Len(t, store.calls, 3)
}

func TestReconcile_UnknownCustomerMutatesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	customers := new(MockCustomerChecker)
	store := new(MockPartyStore)
	r := newReconciler(customers, store)

	customers.On("Exists", ctx, "C1").Return(true, nil)
	customers.On("Exists", ctx, "ghost").Return(false, nil)

	_, err := r.Reconcile(ctx, "doc-1", []models.DesiredParty{
		{CustomerID: "C1", Role: models.RolePartyA},
		{CustomerID: "ghost", Role: models.RolePartyB},
	}, docDate)

	assert.ErrorIs(t, err, models.ErrCustomerNotExist)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	customers.AssertExpectations(t)
}

func TestReconcile_InvalidRole(t *testing.T) {
	t.Parallel()

	store := new(MockPartyStore)
	r := newReconciler(new(MockCustomerChecker), store)

	_, err := r.Reconcile(context.Background(), "doc-1", []models.DesiredParty{{CustomerID: "C1", Role: "Witness"}}, docDate)

	assert.ErrorIs(t, err, models.ErrInvalidRole)
	store.AssertNotCalled(t, "ListByDocument", mock.Anything, mock.Anything)
}

func TestReconcile_CheckerFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	customers := new(MockCustomerChecker)
	store := new(MockPartyStore)
	r := newReconciler(customers, store)

	customers.On("Exists", ctx, "C1").Return(false, errors.New("conn reset"))

	_, err := r.Reconcile(ctx, "doc-1", []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA}}, docDate)
	assert.ErrorIs(t, err, models.ErrInternal)
	store.AssertNotCalled(t, "ListByDocument", mock.Anything, mock.Anything)
}

func TestReconcile_StoreDuplicateSurfaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := new(MockPartyStore)
	r := newReconciler(allCustomers{}, store)

	store.On("ListByDocument", ctx, "doc-1").Return([]models.PartyLink{}, nil)
	store.On("Create", ctx, mock.Anything).Return(&models.UniqueConstraintError{Err: models.ErrDuplicatePartyLink})

	_, err := r.Reconcile(ctx, "doc-1", []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA}}, docDate)
	assert.ErrorIs(t, err, models.ErrDuplicateKey)
}

func TestReconcile_StoreFailureIsInternal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := new(MockPartyStore)
	r := newReconciler(allCustomers{}, store)

	store.On("ListByDocument", ctx, "doc-1").Return([]models.PartyLink{link("C9", models.RolePartyA)}, nil)
	store.On("Create", ctx, mock.Anything).Return(nil)
	store.On("Delete", ctx, "doc-1", "C9").Return(errors.New("deadlock"))

	_, err := r.Reconcile(ctx, "doc-1", []models.DesiredParty{{CustomerID: "C1", Role: models.RolePartyA}}, docDate)
	assert.ErrorIs(t, err, models.ErrInternal)
}
