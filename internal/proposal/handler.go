// AngelaMos | 2026
// handler.go

package proposal

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/middleware"
)

// StatusUpdater decides a proposal. The implementation must apply the
// whole decision atomically.
type StatusUpdater interface {
	SetProposalStatus(
		ctx context.Context,
		p core.Principal,
		id int64,
		status string,
	) (*Decision, error)
}

type Handler struct {
	service   *Service
	decider   StatusUpdater
	validator *validator.Validate
}

func NewHandler(service *Service, decider StatusUpdater) *Handler {
	return &Handler{
		service:   service,
		decider:   decider,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/proposals", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireRole(core.RoleFreelancer)).Post("/", h.Create)
		r.Get("/", h.List)
		r.With(middleware.RequireRole(core.RoleClient)).Put("/{id}", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	var req CreateProposalRequest
	if !h.decode(w, r, &req) {
		return
	}

	prop, err := h.service.Create(r.Context(), *p, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, "proposal submitted", ToProposalResponse(prop))
}

// List serves two distinct queries: a client reads the bids on one of
// their gigs, a freelancer reads their own bids.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	switch {
	case p.IsClient():
		raw := r.URL.Query().Get("gig_id")
		if raw == "" {
			core.BadRequest(w, "gig_id is required")
			return
		}
		gigID, err := core.ParseID(raw)
		if err != nil {
			core.BadRequest(w, "gig_id must be a positive integer")
			return
		}

		rows, err := h.service.ListForGig(r.Context(), *p, gigID)
		if err != nil {
			core.JSONError(w, err)
			return
		}
		core.OK(w, "proposals retrieved", ToClientResponses(rows))

	case p.IsFreelancer():
		rows, err := h.service.ListForFreelancer(r.Context(), *p)
		if err != nil {
			core.JSONError(w, err)
			return
		}
		core.OK(w, "proposals retrieved", ToFreelancerResponses(rows))

	default:
		core.Forbidden(w, "")
	}
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "proposal")
		return
	}

	var req UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	decision, err := h.decider.SetProposalStatus(r.Context(), *p, id, req.Status)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "proposal "+decision.Proposal.Status, ToDecisionResponse(decision))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "proposal")
		return
	}

	if err := h.service.Delete(r.Context(), *p, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "proposal withdrawn", nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := core.DecodeJSON(w, r, dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
