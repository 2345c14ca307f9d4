// AngelaMos | 2026
// handler.go

package transaction

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/middleware"
)

// StatusUpdater moves a transaction along its lifecycle together with
// any gig side effect.
type StatusUpdater interface {
	UpdateTransactionStatus(
		ctx context.Context,
		p core.Principal,
		id int64,
		status string,
	) (*Transaction, error)
}

type Handler struct {
	service   *Service
	updater   StatusUpdater
	validator *validator.Validate
}

func NewHandler(service *Service, updater StatusUpdater) *Handler {
	return &Handler{
		service:   service,
		updater:   updater,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/transactions", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.UpdateStatus)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	rows, err := h.service.List(r.Context(), *p)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "transactions retrieved", ToSummaryResponses(rows))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "transaction")
		return
	}

	d, err := h.service.Get(r.Context(), *p, id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "transaction retrieved", ToDetailResponse(d))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		core.Unauthorized(w, "")
		return
	}

	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		core.NotFound(w, "transaction")
		return
	}

	var req UpdateStatusRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.updater.UpdateTransactionStatus(r.Context(), *p, id, req.Status)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, "transaction "+t.Status, ToTransactionResponse(t))
}
