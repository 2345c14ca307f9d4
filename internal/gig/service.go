// AngelaMos | 2026
// service.go

package gig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	p core.Principal,
	req GigRequest,
) (*Gig, error) {
	if err := core.Authorize(p, core.RoleClient); err != nil {
		return nil, err
	}

	g := &Gig{
		ClientID: p.UserID,
		Status:   StatusOpen,
	}
	if err := applyFields(g, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Summary, error) {
	if params.Status != "" && !IsValidStatus(params.Status) {
		return nil, core.ValidationError(
			"status must be one of [open in_progress completed cancelled]",
		)
	}

	return s.repo.List(ctx, params)
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("gig")
		}
		return nil, err
	}
	return d, nil
}

// Update replaces every editable field. An omitted status keeps the
// current one.
func (s *Service) Update(
	ctx context.Context,
	p core.Principal,
	id int64,
	req GigRequest,
) (*Gig, error) {
	g, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	current := g.Status
	next := current
	if req.Status != nil {
		next = *req.Status
	}
	if !canOwnerSetStatus(current, next) {
		return nil, core.ConflictError(
			fmt.Sprintf("cannot change gig status from %s to %s", current, next),
		)
	}

	if err := applyFields(g, req); err != nil {
		return nil, err
	}
	g.Status = next

	if err := s.repo.Update(ctx, g, current); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, core.ConflictError("gig was modified concurrently, retry")
		}
		return nil, err
	}

	return g, nil
}

// Delete removes the gig and its proposals. Gigs with a transaction are
// kept so payment records stay intact.
func (s *Service) Delete(ctx context.Context, p core.Principal, id int64) error {
	if _, err := s.loadOwned(ctx, p, id); err != nil {
		return err
	}

	hasTx, err := s.repo.HasTransactions(ctx, id)
	if err != nil {
		return err
	}
	if hasTx {
		return core.ConflictError("gig has a transaction and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			return core.NotFoundError("gig")
		case errors.Is(err, core.ErrConflict):
			return core.ConflictError("gig has a transaction and cannot be deleted")
		}
		return err
	}

	return nil
}

func (s *Service) loadOwned(
	ctx context.Context,
	p core.Principal,
	id int64,
) (*Gig, error) {
	if err := core.Authorize(p, core.RoleClient); err != nil {
		return nil, err
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("gig")
		}
		return nil, err
	}

	if !g.OwnedBy(p.UserID) {
		return nil, core.ForbiddenError("you do not own this gig")
	}

	return g, nil
}

func applyFields(g *Gig, req GigRequest) error {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return core.ValidationError("title and description are required")
	}

	if req.Budget == nil {
		return core.ValidationError("budget is required")
	}
	budget := req.Budget.Round(2)
	if !budget.IsPositive() {
		return core.ValidationError("budget must be greater than 0")
	}
	if budget.GreaterThan(core.MaxMoney) {
		return core.ValidationError(
			"budget must be at most " + core.MaxMoney.StringFixed(2),
		)
	}

	deadline, err := parseDate(req.Deadline)
	if err != nil {
		return core.ValidationError("deadline must be a date (YYYY-MM-DD)")
	}

	var category *string
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		c := strings.TrimSpace(*req.Category)
		category = &c
	}

	g.Title = title
	g.Description = description
	g.Category = category
	g.Budget = budget
	g.Deadline = deadline
	return nil
}
