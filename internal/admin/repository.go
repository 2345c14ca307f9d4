// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

type Repository interface {
	MarketplaceStats(ctx context.Context) (*MarketplaceStats, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type bucket struct {
	Key   string `db:"key"`
	Count int64  `db:"count"`
}

func (r *repository) MarketplaceStats(ctx context.Context) (*MarketplaceStats, error) {
	stats := &MarketplaceStats{}

	groups := []struct {
		name  string
		query string
		dst   *map[string]int64
	}{
		{"users", `SELECT role AS key, COUNT(*) AS count FROM users GROUP BY role`, &stats.Users},
		{"gigs", `SELECT status AS key, COUNT(*) AS count FROM gigs GROUP BY status`, &stats.Gigs},
		{"proposals", `SELECT status AS key, COUNT(*) AS count FROM proposals GROUP BY status`, &stats.Proposals},
		{"transactions", `SELECT status AS key, COUNT(*) AS count FROM transactions GROUP BY status`, &stats.Transactions},
	}

	for _, g := range groups {
		var rows []bucket
		if err := r.db.SelectContext(ctx, &rows, g.query); err != nil {
			return nil, fmt.Errorf("count %s: %w", g.name, err)
		}
		*g.dst = toCounts(rows)
	}

	var volume decimal.Decimal
	err := r.db.GetContext(ctx, &volume,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'completed'`)
	if err != nil {
		return nil, fmt.Errorf("sum completed volume: %w", err)
	}
	stats.CompletedVolume = volume

	return stats, nil
}

func toCounts(rows []bucket) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, b := range rows {
		out[b.Key] = b.Count
	}
	return out
}
