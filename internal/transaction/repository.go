// AngelaMos | 2026
// repository.go

package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	GetForUpdate(ctx context.Context, id int64) (*Transaction, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	ListForClient(ctx context.Context, clientID int64) ([]Summary, error)
	ListForFreelancer(ctx context.Context, freelancerID int64) ([]Summary, error)
	TransitionStatus(ctx context.Context, t *Transaction, to string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const transactionColumns = `t.id, t.gig_id, t.client_id, t.freelancer_id, t.proposal_id,
		       t.amount, t.status, t.payment_date, t.completion_date,
		       t.created_at, t.updated_at`

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO transactions (gig_id, client_id, freelancer_id, proposal_id, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.GigID,
		t.ClientID,
		t.FreelancerID,
		t.ProposalID,
		t.Amount,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		switch {
		case core.IsUniqueViolation(err):
			return fmt.Errorf("create transaction: %w", core.ErrDuplicateKey)
		case core.IsForeignKeyViolation(err):
			return fmt.Errorf("create transaction: %w", core.ErrConflict)
		case core.IsInvalidValue(err):
			return fmt.Errorf("create transaction: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create transaction: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	return r.get(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Transaction, error) {
	return r.get(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1 FOR UPDATE`, id)
}

func (r *repository) get(ctx context.Context, query string, id int64) (*Transaction, error) {
	var t Transaction
	err := r.db.GetContext(ctx, &t, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transaction: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	query := `
		SELECT ` + transactionColumns + `,
		       g.title AS gig_title, g.description AS gig_description,
		       c.name AS client_name, c.email AS client_email,
		       f.name AS freelancer_name, f.email AS freelancer_email,
		       p.cover_letter, p.delivery_days
		FROM transactions t
		JOIN gigs g ON g.id = t.gig_id
		JOIN users c ON c.id = t.client_id
		JOIN users f ON f.id = t.freelancer_id
		JOIN proposals p ON p.id = t.proposal_id
		WHERE t.id = $1`

	var d Detail
	err := r.db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transaction detail: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction detail: %w", err)
	}

	return &d, nil
}

func (r *repository) ListForClient(ctx context.Context, clientID int64) ([]Summary, error) {
	query := `
		SELECT ` + transactionColumns + `,
		       g.title AS gig_title, NULL::text AS client_name, f.name AS freelancer_name
		FROM transactions t
		JOIN gigs g ON g.id = t.gig_id
		JOIN users f ON f.id = t.freelancer_id
		WHERE t.client_id = $1
		ORDER BY t.created_at DESC, t.id DESC`

	rows := []Summary{}
	if err := r.db.SelectContext(ctx, &rows, query, clientID); err != nil {
		return nil, fmt.Errorf("list client transactions: %w", err)
	}

	return rows, nil
}

func (r *repository) ListForFreelancer(
	ctx context.Context,
	freelancerID int64,
) ([]Summary, error) {
	query := `
		SELECT ` + transactionColumns + `,
		       g.title AS gig_title, c.name AS client_name, NULL::text AS freelancer_name
		FROM transactions t
		JOIN gigs g ON g.id = t.gig_id
		JOIN users c ON c.id = t.client_id
		WHERE t.freelancer_id = $1
		ORDER BY t.created_at DESC, t.id DESC`

	rows := []Summary{}
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, fmt.Errorf("list freelancer transactions: %w", err)
	}

	return rows, nil
}

// TransitionStatus moves t from its current status to the target in one
// conditional write and stamps the milestone date that belongs to it.
// ErrConflict means another writer moved the row first. On success t is
// refreshed in place.
func (r *repository) TransitionStatus(ctx context.Context, t *Transaction, to string) error {
	query := `
		UPDATE transactions
		SET status = $3,
		    payment_date = CASE WHEN $3 = 'paid' THEN NOW() ELSE payment_date END,
		    completion_date = CASE WHEN $3 = 'completed' THEN NOW() ELSE completion_date END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING status, payment_date, completion_date, updated_at`

	err := r.db.QueryRowxContext(ctx, query, t.ID, t.Status, to).Scan(
		&t.Status,
		&t.PaymentDate,
		&t.CompletionDate,
		&t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(
			"transition transaction %d %s->%s: %w",
			t.ID, t.Status, to, core.ErrConflict,
		)
	}
	if err != nil {
		return fmt.Errorf("transition transaction status: %w", err)
	}

	return nil
}
