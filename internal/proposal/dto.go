// AngelaMos | 2026
// dto.go

package proposal

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProposalRequest struct {
	GigID        int64            `json:"gig_id"        validate:"required"`
	CoverLetter  string           `json:"cover_letter"  validate:"required,max=5000"`
	BidAmount    *decimal.Decimal `json:"bid_amount"    validate:"required"`
	DeliveryDays int              `json:"delivery_days" validate:"gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

// Decision is the outcome of accepting or rejecting a proposal.
// TransactionID is set only on accept.
type Decision struct {
	Proposal      Proposal
	TransactionID int64
}

type ProposalResponse struct {
	ID              int64            `json:"id"`
	GigID           int64            `json:"gig_id"`
	FreelancerID    int64            `json:"freelancer_id"`
	CoverLetter     string           `json:"cover_letter"`
	BidAmount       decimal.Decimal  `json:"bid_amount"`
	DeliveryDays    int              `json:"delivery_days"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	FreelancerName  string           `json:"freelancer_name,omitempty"`
	FreelancerEmail string           `json:"freelancer_email,omitempty"`
	FreelancerBio   *string          `json:"freelancer_bio,omitempty"`
	GigTitle        string           `json:"gig_title,omitempty"`
	GigBudget       *decimal.Decimal `json:"gig_budget,omitempty"`
	GigStatus       string           `json:"gig_status,omitempty"`
	ClientName      string           `json:"client_name,omitempty"`
}

type DecisionResponse struct {
	Proposal      ProposalResponse `json:"proposal"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
}

func ToProposalResponse(p *Proposal) ProposalResponse {
	return ProposalResponse{
		ID:           p.ID,
		GigID:        p.GigID,
		FreelancerID: p.FreelancerID,
		CoverLetter:  p.CoverLetter,
		BidAmount:    p.BidAmount,
		DeliveryDays: p.DeliveryDays,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func ToClientResponses(rows []ForClient) []ProposalResponse {
	out := make([]ProposalResponse, 0, len(rows))
	for i := range rows {
		resp := ToProposalResponse(&rows[i].Proposal)
		resp.FreelancerName = rows[i].FreelancerName
		resp.FreelancerEmail = rows[i].FreelancerEmail
		resp.FreelancerBio = rows[i].FreelancerBio
		out = append(out, resp)
	}
	return out
}

func ToFreelancerResponses(rows []ForFreelancer) []ProposalResponse {
	out := make([]ProposalResponse, 0, len(rows))
	for i := range rows {
		resp := ToProposalResponse(&rows[i].Proposal)
		budget := rows[i].GigBudget
		resp.GigTitle = rows[i].GigTitle
		resp.GigBudget = &budget
		resp.GigStatus = rows[i].GigStatus
		resp.ClientName = rows[i].ClientName
		out = append(out, resp)
	}
	return out
}

func ToDecisionResponse(d *Decision) DecisionResponse {
	resp := DecisionResponse{Proposal: ToProposalResponse(&d.Proposal)}
	if d.TransactionID != 0 {
		id := d.TransactionID
		resp.TransactionID = &id
	}
	return resp
}
