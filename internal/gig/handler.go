// AngelaMos | 2026
// handler.go

package gig

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/gigs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.With(middleware.RequireRole(core.RoleClient)).Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	var req GigRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.Create(r.Context(), *p, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, "gig created", ToGigResponse(g))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}

	rows, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "gigs retrieved", ToSummaryResponses(rows))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "gig")
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "gig retrieved", ToDetailResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "gig")
		return
	}

	var req GigRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.Update(r.Context(), *p, id, req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "gig updated", ToGigResponse(g))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "gig")
		return
	}

	if err := h.service.Delete(r.Context(), *p, id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "gig deleted", nil)
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
