// AngelaMos | 2026
// service.go

package transaction

import (
	"context"
	"errors"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

// Service serves the read side. Status changes go through the workflow
// so that the linked gig moves in the same unit of work.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's own side: transactions they pay as a client
// or deliver as a freelancer.
func (s *Service) List(ctx context.Context, p core.Principal) ([]Summary, error) {
	switch {
	case p.UserID == 0:
		return nil, core.UnauthorizedError("")
	case p.IsClient():
		return s.repo.ListForClient(ctx, p.UserID)
	case p.IsFreelancer():
		return s.repo.ListForFreelancer(ctx, p.UserID)
	}
	return nil, core.ForbiddenError("")
}

func (s *Service) Get(ctx context.Context, p core.Principal, id int64) (*Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("transaction")
		}
		return nil, err
	}

	if !d.IsParty(p.UserID) {
		return nil, core.ForbiddenError("you are not a party to this transaction")
	}

	return d, nil
}
