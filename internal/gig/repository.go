// AngelaMos | 2026
// repository.go

package gig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

type Repository interface {
	Create(ctx context.Context, g *Gig) error
	GetByID(ctx context.Context, id int64) (*Gig, error)
	GetForUpdate(ctx context.Context, id int64) (*Gig, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, params ListParams) ([]Summary, error)
	Update(ctx context.Context, g *Gig, expectedStatus string) error
	Delete(ctx context.Context, id int64) error
	HasTransactions(ctx context.Context, id int64) (bool, error)
	TransitionStatus(ctx context.Context, id int64, from, to string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const gigColumns = `g.id, g.client_id, g.title, g.description, g.category,
		       g.budget, g.deadline, g.status, g.created_at, g.updated_at`

func (r *repository) Create(ctx context.Context, g *Gig) error {
	query := `
		INSERT INTO gigs (client_id, title, description, category, budget, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		g.ClientID,
		g.Title,
		g.Description,
		g.Category,
		g.Budget,
		g.Deadline,
		g.Status,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if core.IsInvalidValue(err) {
			return fmt.Errorf("create gig: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create gig: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Gig, error) {
	return r.get(ctx, `SELECT `+gigColumns+` FROM gigs g WHERE g.id = $1`, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *repository) GetForUpdate(ctx context.Context, id int64) (*Gig, error) {
	return r.get(
		ctx,
		`SELECT `+gigColumns+` FROM gigs g WHERE g.id = $1 FOR UPDATE`,
		id,
	)
}

func (r *repository) get(ctx context.Context, query string, id int64) (*Gig, error) {
	var g Gig
	err := r.db.GetContext(ctx, &g, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get gig: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get gig: %w", err)
	}
	return &g, nil
}

func (r *repository) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	query := `
		SELECT ` + gigColumns + `,
		       u.name AS client_name, u.email AS client_email, u.phone AS client_phone,
		       (SELECT COUNT(*) FROM proposals p WHERE p.gig_id = g.id) AS proposal_count
		FROM gigs g
		JOIN users u ON u.id = g.client_id
		WHERE g.id = $1`

	var d Detail
	err := r.db.GetContext(ctx, &d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get gig detail: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get gig detail: %w", err)
	}

	return &d, nil
}

// List returns gigs newest first. Empty filter fields match everything.
func (r *repository) List(ctx context.Context, params ListParams) ([]Summary, error) {
	query := `
		SELECT ` + gigColumns + `,
		       u.name AS client_name, u.email AS client_email
		FROM gigs g
		JOIN users u ON u.id = g.client_id
		WHERE ($1 = '' OR g.status = $1)
		  AND ($2 = '' OR g.category = $2)
		ORDER BY g.created_at DESC, g.id DESC`

	rows := []Summary{}
	if err := r.db.SelectContext(ctx, &rows, query, params.Status, params.Category); err != nil {
		return nil, fmt.Errorf("list gigs: %w", err)
	}

	return rows, nil
}

// Update replaces the editable fields only if the gig still has
// expectedStatus, so an owner edit cannot clobber a concurrent workflow
// transition.
func (r *repository) Update(ctx context.Context, g *Gig, expectedStatus string) error {
	query := `
		UPDATE gigs
		SET title = $3, description = $4, category = $5, budget = $6,
		    deadline = $7, status = $8, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &g.UpdatedAt, query,
		g.ID,
		expectedStatus,
		g.Title,
		g.Description,
		g.Category,
		g.Budget,
		g.Deadline,
		g.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update gig: %w", core.ErrConflict)
	}
	if err != nil {
		if core.IsInvalidValue(err) {
			return fmt.Errorf("update gig: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("update gig: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM gigs WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete gig: %w", core.ErrConflict)
		}
		return fmt.Errorf("delete gig: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete gig rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete gig: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) HasTransactions(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE gig_id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check gig transactions: %w", err)
	}
	return exists, nil
}

// TransitionStatus moves the gig from one status to another in a single
// conditional write. ErrConflict means the gig was not in the from state.
func (r *repository) TransitionStatus(
	ctx context.Context,
	id int64,
	from, to string,
) error {
	query := `
		UPDATE gigs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("transition gig status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition gig status rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf(
			"transition gig %d %s->%s: %w",
			id, from, to, core.ErrConflict,
		)
	}

	return nil
}
