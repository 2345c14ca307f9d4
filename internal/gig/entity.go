// AngelaMos | 2026
// entity.go

package gig

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Gig struct {
	ID          int64           `db:"id"`
	ClientID    int64           `db:"client_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Category    *string         `db:"category"`
	Budget      decimal.Decimal `db:"budget"`
	Deadline    *time.Time      `db:"deadline"`
	Status      string          `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (g *Gig) IsOpen() bool {
	return g.Status == StatusOpen
}

func (g *Gig) OwnedBy(userID int64) bool {
	return g.ClientID == userID
}

// Summary is a list row: the gig plus its owner's public identity.
type Summary struct {
	Gig
	ClientName  string `db:"client_name"`
	ClientEmail string `db:"client_email"`
}

type Detail struct {
	Gig
	ClientName    string  `db:"client_name"`
	ClientEmail   string  `db:"client_email"`
	ClientPhone   *string `db:"client_phone"`
	ProposalCount int     `db:"proposal_count"`
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// canOwnerSetStatus reports whether a client may move their own gig from
// one status to another by editing it. Every other transition belongs to
// the proposal and transaction workflow.
func canOwnerSetStatus(from, to string) bool {
	if from == to {
		return true
	}
	return from == StatusOpen && to == StatusCancelled
}
