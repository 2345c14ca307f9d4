// AngelaMos | 2026
// service.go

package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/gig"
	"github.com/carterperez-dev/freelancehub/internal/proposal"
	"github.com/carterperez-dev/freelancehub/internal/transaction"
)

// Service owns every status change that spans more than one entity:
// deciding a proposal and moving a transaction through payment and
// delivery. Rows are locked before they are checked, so two callers
// racing on the same gig serialize and the loser sees the winner's state.
type Service struct {
	uow UnitOfWork
}

func NewService(uow UnitOfWork) *Service {
	return &Service{uow: uow}
}

// SetProposalStatus accepts or rejects a pending proposal on an open gig.
// Accepting moves the gig to in_progress and opens a pending transaction
// for the bid amount in the same unit of work.
func (s *Service) SetProposalStatus(
	ctx context.Context,
	p core.Principal,
	id int64,
	status string,
) (decision *proposal.Decision, err error) {
	ctx, span := core.StartSpan(ctx, "workflow.SetProposalStatus",
		attribute.Int64("proposal.id", id),
		attribute.String("proposal.status", status),
		attribute.String("principal", p.String()),
	)
	defer func() { core.EndSpan(span, err) }()

	if !proposal.IsDecision(status) {
		return nil, core.ValidationError("status must be one of [accepted rejected]")
	}

	err = s.uow.Do(ctx, func(r Repos) error {
		pg, err := r.Proposals.GetWithGigForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("proposal")
			}
			return err
		}

		if !p.IsClient() || pg.GigClientID != p.UserID {
			return core.ForbiddenError("you do not own the gig for this proposal")
		}
		if !pg.IsPending() {
			return core.ConflictError("proposal has already been " + pg.Status)
		}
		if pg.GigStatus != gig.StatusOpen {
			return errGigNotOpen()
		}

		d := &proposal.Decision{Proposal: pg.Proposal}

		if status == proposal.StatusAccepted {
			if err := r.Gigs.TransitionStatus(
				ctx, pg.GigID, gig.StatusOpen, gig.StatusInProgress,
			); err != nil {
				return conflictOr(err, errGigNotOpen())
			}

			if err := r.Proposals.TransitionStatus(
				ctx, &d.Proposal, proposal.StatusAccepted,
			); err != nil {
				return conflictOr(err, core.ConflictError("proposal is no longer pending"))
			}

			t := &transaction.Transaction{
				GigID:        pg.GigID,
				ClientID:     pg.GigClientID,
				FreelancerID: pg.FreelancerID,
				ProposalID:   pg.ID,
				Amount:       pg.BidAmount,
				Status:       transaction.StatusPending,
			}
			if err := r.Transactions.Create(ctx, t); err != nil {
				if errors.Is(err, core.ErrDuplicateKey) {
					return core.ConflictError("proposal already has a transaction")
				}
				return err
			}
			d.TransactionID = t.ID
		} else {
			if err := r.Proposals.TransitionStatus(
				ctx, &d.Proposal, proposal.StatusRejected,
			); err != nil {
				return conflictOr(err, core.ConflictError("proposal is no longer pending"))
			}
		}

		decision = d
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	slog.InfoContext(ctx, "proposal decided",
		"proposal_id", id,
		"gig_id", decision.Proposal.GigID,
		"status", status,
		"transaction_id", decision.TransactionID,
		"user_id", p.UserID,
	)

	return decision, nil
}

// UpdateTransactionStatus applies a payment milestone. The client marks a
// pending transaction paid or cancels it; the freelancer marks a paid
// transaction completed. Completing or cancelling also closes the gig.
func (s *Service) UpdateTransactionStatus(
	ctx context.Context,
	p core.Principal,
	id int64,
	status string,
) (result *transaction.Transaction, err error) {
	ctx, span := core.StartSpan(ctx, "workflow.UpdateTransactionStatus",
		attribute.Int64("transaction.id", id),
		attribute.String("transaction.status", status),
		attribute.String("principal", p.String()),
	)
	defer func() { core.EndSpan(span, err) }()

	if !transaction.IsTarget(status) {
		return nil, core.ValidationError("status must be one of [paid completed cancelled]")
	}

	err = s.uow.Do(ctx, func(r Repos) error {
		t, err := r.Transactions.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("transaction")
			}
			return err
		}

		if err := authorizeTransition(p, t, status); err != nil {
			return err
		}

		if !transaction.CanTransition(t.Status, status) {
			return core.ConflictError(fmt.Sprintf(
				"transaction cannot move from %s to %s", t.Status, status,
			))
		}

		if err := r.Transactions.TransitionStatus(ctx, t, status); err != nil {
			return conflictOr(err, core.ConflictError("transaction was modified concurrently"))
		}

		var gigTarget string
		switch status {
		case transaction.StatusCompleted:
			gigTarget = gig.StatusCompleted
		case transaction.StatusCancelled:
			gigTarget = gig.StatusCancelled
		}
		if gigTarget != "" {
			if err := r.Gigs.TransitionStatus(
				ctx, t.GigID, gig.StatusInProgress, gigTarget,
			); err != nil {
				return conflictOr(err, core.ConflictError("gig is no longer in progress"))
			}
		}

		result = t
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}

	slog.InfoContext(ctx, "transaction updated",
		"transaction_id", id,
		"gig_id", result.GigID,
		"status", status,
		"user_id", p.UserID,
	)

	return result, nil
}

func authorizeTransition(p core.Principal, t *transaction.Transaction, status string) error {
	if !t.IsParty(p.UserID) {
		return core.ForbiddenError("you are not a party to this transaction")
	}

	switch status {
	case transaction.StatusPaid, transaction.StatusCancelled:
		if !p.IsClient() || t.ClientID != p.UserID {
			return core.ForbiddenError("only the client can mark this transaction " + status)
		}
	case transaction.StatusCompleted:
		if !p.IsFreelancer() || t.FreelancerID != p.UserID {
			return core.ForbiddenError("only the freelancer can mark this transaction completed")
		}
	}

	return nil
}

func errGigNotOpen() *core.AppError {
	return core.ConflictError("gig is not open")
}

// conflictOr returns appErr when err is a lost conditional write and err
// otherwise.
func conflictOr(err error, appErr *core.AppError) error {
	if errors.Is(err, core.ErrConflict) {
		return appErr
	}
	return err
}

// asAppError lets business failures raised inside the unit of work through
// unchanged and turns anything else into an internal error.
func asAppError(err error) error {
	var appErr *core.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return core.InternalError(err)
}
