// AngelaMos | 2026
// entity.go

package proposal

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

type Proposal struct {
	ID           int64           `db:"id"`
	GigID        int64           `db:"gig_id"`
	FreelancerID int64           `db:"freelancer_id"`
	CoverLetter  string          `db:"cover_letter"`
	BidAmount    decimal.Decimal `db:"bid_amount"`
	DeliveryDays int             `db:"delivery_days"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (p *Proposal) IsPending() bool {
	return p.Status == StatusPending
}

// ForClient is a proposal as the gig owner sees it.
type ForClient struct {
	Proposal
	FreelancerName  string  `db:"freelancer_name"`
	FreelancerEmail string  `db:"freelancer_email"`
	FreelancerBio   *string `db:"freelancer_bio"`
}

// ForFreelancer is a proposal as its author sees it.
type ForFreelancer struct {
	Proposal
	GigTitle   string          `db:"gig_title"`
	GigBudget  decimal.Decimal `db:"gig_budget"`
	GigStatus  string          `db:"gig_status"`
	ClientName string          `db:"client_name"`
}

// WithGig carries the owning gig's state the accept/reject decision
// depends on.
type WithGig struct {
	Proposal
	GigClientID int64  `db:"gig_client_id"`
	GigStatus   string `db:"gig_status"`
}

func IsDecision(status string) bool {
	return status == StatusAccepted || status == StatusRejected
}
