// AngelaMos | 2026
// repository.go

package proposal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

// ErrGigNotOpen is returned by Create when the gig left the open state
// before the insert ran.
var ErrGigNotOpen = errors.New("gig not open")

type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	GetByID(ctx context.Context, id int64) (*Proposal, error)
	Exists(ctx context.Context, gigID, freelancerID int64) (bool, error)
	ListByGig(ctx context.Context, gigID int64) ([]ForClient, error)
	ListByFreelancer(ctx context.Context, freelancerID int64) ([]ForFreelancer, error)
	DeletePending(ctx context.Context, id int64) error
	GetWithGigForUpdate(ctx context.Context, id int64) (*WithGig, error)
	TransitionStatus(ctx context.Context, p *Proposal, to string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const proposalColumns = `p.id, p.gig_id, p.freelancer_id, p.cover_letter, p.bid_amount,
		       p.delivery_days, p.status, p.created_at, p.updated_at`

// Create inserts only while the gig is open. The unique index on
// (gig_id, freelancer_id) settles concurrent duplicate submissions.
func (r *repository) Create(ctx context.Context, p *Proposal) error {
	query := `
		INSERT INTO proposals (gig_id, freelancer_id, cover_letter, bid_amount, delivery_days, status)
		SELECT g.id, $2::bigint, $3::text, $4::numeric, $5::int, 'pending'
		FROM gigs g
		WHERE g.id = $1 AND g.status = 'open'
		RETURNING id, status, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.GigID,
		p.FreelancerID,
		p.CoverLetter,
		p.BidAmount,
		p.DeliveryDays,
	).Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create proposal: %w", ErrGigNotOpen)
	}
	if err != nil {
		switch {
		case core.IsUniqueViolation(err):
			return fmt.Errorf("create proposal: %w", core.ErrDuplicateKey)
		case core.IsInvalidValue(err):
			return fmt.Errorf("create proposal: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create proposal: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals p WHERE p.id = $1`

	var p Proposal
	err := r.db.GetContext(ctx, &p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get proposal: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	return &p, nil
}

func (r *repository) Exists(ctx context.Context, gigID, freelancerID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM proposals WHERE gig_id = $1 AND freelancer_id = $2
		)`, gigID, freelancerID)
	if err != nil {
		return false, fmt.Errorf("check proposal exists: %w", err)
	}
	return exists, nil
}

func (r *repository) ListByGig(ctx context.Context, gigID int64) ([]ForClient, error) {
	query := `
		SELECT ` + proposalColumns + `,
		       u.name AS freelancer_name, u.email AS freelancer_email, u.bio AS freelancer_bio
		FROM proposals p
		JOIN users u ON u.id = p.freelancer_id
		WHERE p.gig_id = $1
		ORDER BY p.created_at DESC, p.id DESC`

	rows := []ForClient{}
	if err := r.db.SelectContext(ctx, &rows, query, gigID); err != nil {
		return nil, fmt.Errorf("list proposals by gig: %w", err)
	}
	return rows, nil
}

func (r *repository) ListByFreelancer(
	ctx context.Context,
	freelancerID int64,
) ([]ForFreelancer, error) {
	query := `
		SELECT ` + proposalColumns + `,
		       g.title AS gig_title, g.budget AS gig_budget, g.status AS gig_status,
		       u.name AS client_name
		FROM proposals p
		JOIN gigs g ON g.id = p.gig_id
		JOIN users u ON u.id = g.client_id
		WHERE p.freelancer_id = $1
		ORDER BY p.created_at DESC, p.id DESC`

	rows := []ForFreelancer{}
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, fmt.Errorf("list proposals by freelancer: %w", err)
	}
	return rows, nil
}

// DeletePending removes the proposal only while it is pending.
// ErrConflict means the row exists but is no longer pending.
func (r *repository) DeletePending(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM proposals WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete proposal rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("delete proposal: %w", core.ErrConflict)
}

// GetWithGigForUpdate locks the proposal and its gig for the rest of the
// transaction. Concurrent decisions on the same gig queue behind the lock.
func (r *repository) GetWithGigForUpdate(ctx context.Context, id int64) (*WithGig, error) {
	query := `
		SELECT ` + proposalColumns + `,
		       g.client_id AS gig_client_id, g.status AS gig_status
		FROM proposals p
		JOIN gigs g ON g.id = p.gig_id
		WHERE p.id = $1
		FOR UPDATE OF p, g`

	var row WithGig
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get proposal for update: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get proposal for update: %w", err)
	}

	return &row, nil
}

// TransitionStatus moves p from its current status to `to`, refreshing
// p from the written row. A status changed underneath yields ErrConflict.
func (r *repository) TransitionStatus(
	ctx context.Context,
	p *Proposal,
	to string,
) error {
	query := `
		UPDATE proposals
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING status, updated_at`

	err := r.db.QueryRowxContext(ctx, query, p.ID, p.Status, to).
		Scan(&p.Status, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf(
			"transition proposal %d %s->%s: %w",
			p.ID, p.Status, to, core.ErrConflict,
		)
	}
	if err != nil {
		return fmt.Errorf("transition proposal status: %w", err)
	}

	return nil
}
