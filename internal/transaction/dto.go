// AngelaMos | 2026
// dto.go

package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=paid completed cancelled"`
}

type TransactionResponse struct {
	ID              int64           `json:"id"`
	GigID           int64           `json:"gig_id"`
	ClientID        int64           `json:"client_id"`
	FreelancerID    int64           `json:"freelancer_id"`
	ProposalID      int64           `json:"proposal_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	PaymentDate     *time.Time      `json:"payment_date"`
	CompletionDate  *time.Time      `json:"completion_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	GigTitle        string          `json:"gig_title,omitempty"`
	GigDescription  string          `json:"gig_description,omitempty"`
	ClientName      *string         `json:"client_name,omitempty"`
	ClientEmail     string          `json:"client_email,omitempty"`
	FreelancerName  *string         `json:"freelancer_name,omitempty"`
	FreelancerEmail string          `json:"freelancer_email,omitempty"`
	CoverLetter     string          `json:"cover_letter,omitempty"`
	DeliveryDays    int             `json:"delivery_days,omitempty"`
}

func ToTransactionResponse(t *Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		GigID:          t.GigID,
		ClientID:       t.ClientID,
		FreelancerID:   t.FreelancerID,
		ProposalID:     t.ProposalID,
		Amount:         t.Amount,
		Status:         t.Status,
		PaymentDate:    t.PaymentDate,
		CompletionDate: t.CompletionDate,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func ToSummaryResponses(rows []Summary) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(rows))
	for i := range rows {
		resp := ToTransactionResponse(&rows[i].Transaction)
		resp.GigTitle = rows[i].GigTitle
		resp.ClientName = rows[i].ClientName
		resp.FreelancerName = rows[i].FreelancerName
		out = append(out, resp)
	}
	return out
}

func ToDetailResponse(d *Detail) TransactionResponse {
	resp := ToTransactionResponse(&d.Transaction)
	resp.GigTitle = d.GigTitle
	resp.GigDescription = d.GigDescription
	resp.ClientName = &d.ClientName
	resp.ClientEmail = d.ClientEmail
	resp.FreelancerName = &d.FreelancerName
	resp.FreelancerEmail = d.FreelancerEmail
	resp.CoverLetter = d.CoverLetter
	resp.DeliveryDays = d.DeliveryDays
	return resp
}
