// AngelaMos | 2026
// entity.go

package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Transaction struct {
	ID             int64           `db:"id"`
	GigID          int64           `db:"gig_id"`
	ClientID       int64           `db:"client_id"`
	FreelancerID   int64           `db:"freelancer_id"`
	ProposalID     int64           `db:"proposal_id"`
	Amount         decimal.Decimal `db:"amount"`
	Status         string          `db:"status"`
	PaymentDate    *time.Time      `db:"payment_date"`
	CompletionDate *time.Time      `db:"completion_date"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// IsParty reports whether userID is the client or the freelancer on the
// record.
func (t *Transaction) IsParty(userID int64) bool {
	return userID != 0 && (t.ClientID == userID || t.FreelancerID == userID)
}

// Summary is a list row. Only the counter-party name applicable to the
// reader is filled.
type Summary struct {
	Transaction
	GigTitle       string  `db:"gig_title"`
	ClientName     *string `db:"client_name"`
	FreelancerName *string `db:"freelancer_name"`
}

type Detail struct {
	Transaction
	GigTitle        string `db:"gig_title"`
	GigDescription  string `db:"gig_description"`
	ClientName      string `db:"client_name"`
	ClientEmail     string `db:"client_email"`
	FreelancerName  string `db:"freelancer_name"`
	FreelancerEmail string `db:"freelancer_email"`
	CoverLetter     string `db:"cover_letter"`
	DeliveryDays    int    `db:"delivery_days"`
}

// transitions lists every legal status move. Nothing leaves completed or
// cancelled.
var transitions = map[string][]string{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTarget reports whether status is one a caller may request.
func IsTarget(status string) bool {
	return status == StatusPaid || status == StatusCompleted || status == StatusCancelled
}
