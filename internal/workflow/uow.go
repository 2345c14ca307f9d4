// AngelaMos | 2026
// uow.go

package workflow

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/gig"
	"github.com/carterperez-dev/freelancehub/internal/proposal"
	"github.com/carterperez-dev/freelancehub/internal/transaction"
)

// Repos is the set of repositories bound to one unit of work. Every write
// made through them commits or rolls back together.
type Repos struct {
	Gigs         gig.Repository
	Proposals    proposal.Repository
	Transactions transaction.Repository
}

type UnitOfWork interface {
	// Do runs fn in a single store transaction. A non-nil error from fn
	// rolls back every write fn made.
	Do(ctx context.Context, fn func(r Repos) error) error
}

type sqlUnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &sqlUnitOfWork{db: db}
}

func (u *sqlUnitOfWork) Do(ctx context.Context, fn func(r Repos) error) error {
	return core.InTx(ctx, u.db, func(tx *sqlx.Tx) error {
		return fn(Repos{
			Gigs:         gig.NewRepository(tx),
			Proposals:    proposal.NewRepository(tx),
			Transactions: transaction.NewRepository(tx),
		})
	})
}
