// AngelaMos | 2026
// proposal_test.go

package proposal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/gig"
	"github.com/carterperez-dev/freelancehub/internal/middleware"
)

// ============================================================================
// Mocks
// ============================================================================

type mockRepository struct {
	createFunc           func(ctx context.Context, p *Proposal) error
	getByIDFunc          func(ctx context.Context, id int64) (*Proposal, error)
	existsFunc           func(ctx context.Context, gigID, freelancerID int64) (bool, error)
	listByGigFunc        func(ctx context.Context, gigID int64) ([]ForClient, error)
	listByFreelancerFunc func(ctx context.Context, freelancerID int64) ([]ForFreelancer, error)
	deletePendingFunc    func(ctx context.Context, id int64) error
}

func (m *mockRepository) Create(ctx context.Context, p *Proposal) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = 1
	p.Status = StatusPending
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Proposal, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("get proposal: %w", core.ErrNotFound)
}

func (m *mockRepository) Exists(ctx context.Context, gigID, freelancerID int64) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, gigID, freelancerID)
	}
	return false, nil
}

func (m *mockRepository) ListByGig(ctx context.Context, gigID int64) ([]ForClient, error) {
	if m.listByGigFunc != nil {
		return m.listByGigFunc(ctx, gigID)
	}
	return []ForClient{}, nil
}

func (m *mockRepository) ListByFreelancer(ctx context.Context, id int64) ([]ForFreelancer, error) {
	if m.listByFreelancerFunc != nil {
		return m.listByFreelancerFunc(ctx, id)
	}
	return []ForFreelancer{}, nil
}

func (m *mockRepository) DeletePending(ctx context.Context, id int64) error {
	if m.deletePendingFunc != nil {
		return m.deletePendingFunc(ctx, id)
	}
	return nil
}

func (m *mockRepository) GetWithGigForUpdate(context.Context, int64) (*WithGig, error) {
	return nil, fmt.Errorf("get proposal for update: %w", core.ErrNotFound)
}

func (m *mockRepository) TransitionStatus(context.Context, *Proposal, string) error {
	return nil
}

type mockGigs struct {
	gigs map[int64]*gig.Gig
}

func (m *mockGigs) GetByID(_ context.Context, id int64) (*gig.Gig, error) {
	g, ok := m.gigs[id]
	if !ok {
		return nil, fmt.Errorf("get gig: %w", core.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

type mockDecider struct {
	setFunc func(ctx context.Context, p core.Principal, id int64, status string) (*Decision, error)
}

func (m *mockDecider) SetProposalStatus(
	ctx context.Context,
	p core.Principal,
	id int64,
	status string,
) (*Decision, error) {
	return m.setFunc(ctx, p, id, status)
}

var (
	client      = core.Principal{UserID: 1, Role: core.RoleClient}
	otherClient = core.Principal{UserID: 2, Role: core.RoleClient}
	freelancer  = core.Principal{UserID: 3, Role: core.RoleFreelancer}
	freelancer2 = core.Principal{UserID: 4, Role: core.RoleFreelancer}
)

func setupTestGigs() *mockGigs {
	return &mockGigs{gigs: map[int64]*gig.Gig{
		10: {ID: 10, ClientID: client.UserID, Status: gig.StatusOpen},
		11: {ID: 11, ClientID: client.UserID, Status: gig.StatusInProgress},
	}}
}

func bid(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validCreate() CreateProposalRequest {
	return CreateProposalRequest{
		GigID:        10,
		CoverLetter:  "I can do this",
		BidAmount:    bid("450000"),
		DeliveryDays: 5,
	}
}

// ============================================================================
// Service: Create
// ============================================================================

func TestService_Create(t *testing.T) {
	var stored *Proposal
	svc := NewService(&mockRepository{
		createFunc: func(_ context.Context, p *Proposal) error {
			p.ID = 7
			p.Status = StatusPending
			stored = p
			return nil
		},
	}, setupTestGigs())

	prop, err := svc.Create(context.Background(), freelancer, validCreate())
	require.NoError(t, err)
	assert.Equal(t, int64(7), prop.ID)
	assert.Equal(t, freelancer.UserID, stored.FreelancerID)
	assert.True(t, decimal.RequireFromString("450000").Equal(stored.BidAmount))
}

func TestService_CreateErrors(t *testing.T) {
	tests := []struct {
		name    string
		caller  core.Principal
		mutate  func(*CreateProposalRequest)
		repo    *mockRepository
		wantErr error
	}{
		{"client cannot bid", client, nil, &mockRepository{}, core.ErrForbidden},
		{"missing gig", freelancer, func(r *CreateProposalRequest) { r.GigID = 99 }, &mockRepository{}, core.ErrNotFound},
		{"gig not open", freelancer, func(r *CreateProposalRequest) { r.GigID = 11 }, &mockRepository{}, core.ErrConflict},
		{"zero bid", freelancer, func(r *CreateProposalRequest) { r.BidAmount = bid("0") }, &mockRepository{}, core.ErrInvalidInput},
		{"zero days", freelancer, func(r *CreateProposalRequest) { r.DeliveryDays = 0 }, &mockRepository{}, core.ErrInvalidInput},
		{"bid beyond column", freelancer, func(r *CreateProposalRequest) { r.BidAmount = bid("1000000000000000") }, &mockRepository{}, core.ErrInvalidInput},
		{"days beyond int4", freelancer, func(r *CreateProposalRequest) { r.DeliveryDays = 3_000_000_000 }, &mockRepository{}, core.ErrInvalidInput},
		{
			"value rejected by database", freelancer, nil,
			&mockRepository{createFunc: func(context.Context, *Proposal) error {
				return fmt.Errorf("create proposal: %w", core.ErrInvalidInput)
			}},
			core.ErrInvalidInput,
		},
		{"blank letter", freelancer, func(r *CreateProposalRequest) { r.CoverLetter = " " }, &mockRepository{}, core.ErrInvalidInput},
		{
			"duplicate by pre-check", freelancer, nil,
			&mockRepository{existsFunc: func(context.Context, int64, int64) (bool, error) { return true, nil }},
			core.ErrConflict,
		},
		{
			"duplicate by unique index", freelancer, nil,
			&mockRepository{createFunc: func(context.Context, *Proposal) error {
				return fmt.Errorf("create proposal: %w", core.ErrDuplicateKey)
			}},
			core.ErrConflict,
		},
		{
			"gig closed between check and insert", freelancer, nil,
			&mockRepository{createFunc: func(context.Context, *Proposal) error {
				return fmt.Errorf("create proposal: %w", ErrGigNotOpen)
			}},
			core.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, setupTestGigs())
			req := validCreate()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := svc.Create(context.Background(), tt.caller, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ============================================================================
// Service: List / Delete
// ============================================================================

func TestService_ListForGigOwnership(t *testing.T) {
	svc := NewService(&mockRepository{
		listByGigFunc: func(_ context.Context, gigID int64) ([]ForClient, error) {
			return []ForClient{{Proposal: Proposal{ID: 1, GigID: gigID}}}, nil
		},
	}, setupTestGigs())
	ctx := context.Background()

	rows, err := svc.ListForGig(ctx, client, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.ListForGig(ctx, otherClient, 10)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.ListForGig(ctx, client, 99)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.ListForGig(ctx, freelancer, 10)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestService_ListForFreelancerScopesToCaller(t *testing.T) {
	var asked int64
	svc := NewService(&mockRepository{
		listByFreelancerFunc: func(_ context.Context, id int64) ([]ForFreelancer, error) {
			asked = id
			return []ForFreelancer{}, nil
		},
	}, setupTestGigs())

	_, err := svc.ListForFreelancer(context.Background(), freelancer2)
	require.NoError(t, err)
	assert.Equal(t, freelancer2.UserID, asked)
}

func TestService_Delete(t *testing.T) {
	proposals := map[int64]*Proposal{
		1: {ID: 1, FreelancerID: freelancer.UserID, Status: StatusPending},
		2: {ID: 2, FreelancerID: freelancer.UserID, Status: StatusAccepted},
		3: {ID: 3, FreelancerID: freelancer.UserID, Status: StatusRejected},
	}
	var deleted []int64
	svc := NewService(&mockRepository{
		getByIDFunc: func(_ context.Context, id int64) (*Proposal, error) {
			p, ok := proposals[id]
			if !ok {
				return nil, fmt.Errorf("get proposal: %w", core.ErrNotFound)
			}
			return p, nil
		},
		deletePendingFunc: func(_ context.Context, id int64) error {
			deleted = append(deleted, id)
			return nil
		},
	}, setupTestGigs())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, freelancer2, 1), core.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, client, 1), core.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, freelancer, 2), core.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, freelancer, 3), core.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, freelancer, 9), core.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, freelancer, 1))
	assert.Equal(t, []int64{1}, deleted)
}

func TestService_DeleteLosesRaceToAccept(t *testing.T) {
	svc := NewService(&mockRepository{
		getByIDFunc: func(context.Context, int64) (*Proposal, error) {
			return &Proposal{ID: 1, FreelancerID: freelancer.UserID, Status: StatusPending}, nil
		},
		deletePendingFunc: func(context.Context, int64) error {
			return fmt.Errorf("delete proposal: %w", core.ErrConflict)
		},
	}, setupTestGigs())

	assert.ErrorIs(t, svc.Delete(context.Background(), freelancer, 1), core.ErrConflict)
}

// ============================================================================
// Handler
// ============================================================================

func setupTestRouter(repo Repository, decider StatusUpdater, p *core.Principal) *chi.Mux {
	r := chi.NewRouter()
	authenticator := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p == nil {
				core.Unauthorized(w, "")
				return
			}
			next.ServeHTTP(w, req.WithContext(middleware.WithPrincipal(req.Context(), *p)))
		})
	}
	NewHandler(NewService(repo, setupTestGigs()), decider).RegisterRoutes(r, authenticator)
	return r
}

func serve(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandler_ListBranchesOnRole(t *testing.T) {
	repo := &mockRepository{
		listByGigFunc: func(context.Context, int64) ([]ForClient, error) {
			return []ForClient{{Proposal: Proposal{ID: 1}, FreelancerName: "Fay"}}, nil
		},
		listByFreelancerFunc: func(context.Context, int64) ([]ForFreelancer, error) {
			return []ForFreelancer{{Proposal: Proposal{ID: 2}, GigTitle: "Build API", ClientName: "Cara"}}, nil
		},
	}

	clientRouter := setupTestRouter(repo, nil, &client)
	rec := serve(clientRouter, http.MethodGet, "/proposals", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "gig_id is required")

	rec = serve(clientRouter, http.MethodGet, "/proposals?gig_id=10", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"freelancer_name":"Fay"`)
	assert.NotContains(t, rec.Body.String(), "gig_title")

	rec = serve(setupTestRouter(repo, nil, &otherClient), http.MethodGet, "/proposals?gig_id=10", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(setupTestRouter(repo, nil, &freelancer), http.MethodGet, "/proposals", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gig_title":"Build API"`)
	assert.Contains(t, rec.Body.String(), `"client_name":"Cara"`)
}

func TestHandler_CreateRoleAndValidation(t *testing.T) {
	body := map[string]any{
		"gig_id": 10, "cover_letter": "hi", "bid_amount": "450000", "delivery_days": 5,
	}

	rec := serve(setupTestRouter(&mockRepository{}, nil, &client), http.MethodPost, "/proposals", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	router := setupTestRouter(&mockRepository{}, nil, &freelancer)
	rec = serve(router, http.MethodPost, "/proposals", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	rec = serve(router, http.MethodPost, "/proposals", map[string]any{
		"gig_id": 10, "cover_letter": "hi", "bid_amount": 1, "delivery_days": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "delivery_days")

	rec = serve(router, http.MethodPost, "/proposals", map[string]any{
		"gig_id": 11, "cover_letter": "hi", "bid_amount": 1, "delivery_days": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "gig is not open")
}

func TestHandler_UpdateStatusDelegatesToDecider(t *testing.T) {
	var gotStatus string
	decider := &mockDecider{
		setFunc: func(_ context.Context, p core.Principal, id int64, status string) (*Decision, error) {
			gotStatus = status
			return &Decision{
				Proposal:      Proposal{ID: id, Status: status},
				TransactionID: 42,
			}, nil
		},
	}
	router := setupTestRouter(&mockRepository{}, decider, &client)

	rec := serve(router, http.MethodPut, "/proposals/5", map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusAccepted, gotStatus)
	assert.Contains(t, rec.Body.String(), `"transaction_id":42`)

	rec = serve(router, http.MethodPut, "/proposals/5", map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(setupTestRouter(&mockRepository{}, decider, &freelancer), http.MethodPut,
		"/proposals/5", map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
