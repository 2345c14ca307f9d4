// AngelaMos | 2026
// service.go

package proposal

import (
	"context"
	"errors"
	"strings"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/gig"
)

type GigReader interface {
	GetByID(ctx context.Context, id int64) (*gig.Gig, error)
}

type Service struct {
	repo Repository
	gigs GigReader
}

func NewService(repo Repository, gigs GigReader) *Service {
	return &Service{repo: repo, gigs: gigs}
}

// Create submits a bid. The early checks give precise errors; the
// conditional insert and unique index are what actually guard the race.
func (s *Service) Create(
	ctx context.Context,
	p core.Principal,
	req CreateProposalRequest,
) (*Proposal, error) {
	if err := core.Authorize(p, core.RoleFreelancer); err != nil {
		return nil, err
	}

	coverLetter := strings.TrimSpace(req.CoverLetter)
	if coverLetter == "" {
		return nil, core.ValidationError("cover_letter is required")
	}
	if req.BidAmount == nil {
		return nil, core.ValidationError("bid_amount is required")
	}
	bid := req.BidAmount.Round(2)
	if !bid.IsPositive() {
		return nil, core.ValidationError("bid_amount must be greater than 0")
	}
	if bid.GreaterThan(core.MaxMoney) {
		return nil, core.ValidationError(
			"bid_amount must be at most " + core.MaxMoney.StringFixed(2),
		)
	}
	if req.DeliveryDays <= 0 {
		return nil, core.ValidationError("delivery_days must be greater than 0")
	}
	if req.DeliveryDays > core.MaxInt4 {
		return nil, core.ValidationError("delivery_days is too large")
	}

	g, err := s.gigs.GetByID(ctx, req.GigID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("gig")
		}
		return nil, err
	}
	if !g.IsOpen() {
		return nil, errGigNotOpen()
	}

	exists, err := s.repo.Exists(ctx, req.GigID, p.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicate()
	}

	prop := &Proposal{
		GigID:        req.GigID,
		FreelancerID: p.UserID,
		CoverLetter:  coverLetter,
		BidAmount:    bid,
		DeliveryDays: req.DeliveryDays,
	}

	if err := s.repo.Create(ctx, prop); err != nil {
		switch {
		case errors.Is(err, ErrGigNotOpen):
			return nil, errGigNotOpen()
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, errDuplicate()
		}
		return nil, err
	}

	return prop, nil
}

// ListForGig returns every bid on a gig to the client who owns it.
func (s *Service) ListForGig(
	ctx context.Context,
	p core.Principal,
	gigID int64,
) ([]ForClient, error) {
	if err := core.Authorize(p, core.RoleClient); err != nil {
		return nil, err
	}

	g, err := s.gigs.GetByID(ctx, gigID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("gig")
		}
		return nil, err
	}
	if !g.OwnedBy(p.UserID) {
		return nil, core.ForbiddenError("you do not own this gig")
	}

	return s.repo.ListByGig(ctx, gigID)
}

func (s *Service) ListForFreelancer(
	ctx context.Context,
	p core.Principal,
) ([]ForFreelancer, error) {
	if err := core.Authorize(p, core.RoleFreelancer); err != nil {
		return nil, err
	}

	return s.repo.ListByFreelancer(ctx, p.UserID)
}

// Delete withdraws a pending proposal. Accepted and rejected proposals
// are kept as records.
func (s *Service) Delete(ctx context.Context, p core.Principal, id int64) error {
	prop, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("proposal")
		}
		return err
	}

	if !p.IsFreelancer() || prop.FreelancerID != p.UserID {
		return core.ForbiddenError("you do not own this proposal")
	}

	if !prop.IsPending() {
		return errNotWithdrawable(prop.Status)
	}

	if err := s.repo.DeletePending(ctx, id); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			return core.NotFoundError("proposal")
		case errors.Is(err, core.ErrConflict):
			return errNotWithdrawable("")
		}
		return err
	}

	return nil
}

func errGigNotOpen() *core.AppError {
	return core.ConflictError("gig is not open for proposals")
}

func errDuplicate() *core.AppError {
	return core.ConflictError("you have already submitted a proposal for this gig")
}

func errNotWithdrawable(status string) *core.AppError {
	if status == "" {
		return core.ConflictError("only pending proposals can be withdrawn")
	}
	return core.ConflictError(
		"only pending proposals can be withdrawn, this one is " + status,
	)
}
