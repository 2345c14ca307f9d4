// AngelaMos | 2026
// dto.go

package gig

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// GigRequest is the body of both create and full-replace update.
// Status is only honoured on update.
type GigRequest struct {
	Title       string           `json:"title"       validate:"required,max=200"`
	Description string           `json:"description" validate:"required,max=10000"`
	Category    *string          `json:"category"    validate:"omitempty,max=100"`
	Budget      *decimal.Decimal `json:"budget"      validate:"required"`
	Deadline    *string          `json:"deadline"    validate:"omitempty,datetime=2006-01-02"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=open in_progress completed cancelled"`
}

type ListParams struct {
	Status   string
	Category string
}

type GigResponse struct {
	ID            int64           `json:"id"`
	ClientID      int64           `json:"client_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      *string         `json:"category"`
	Budget        decimal.Decimal `json:"budget"`
	Deadline      *string         `json:"deadline"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ClientName    string          `json:"client_name,omitempty"`
	ClientEmail   string          `json:"client_email,omitempty"`
	ClientPhone   *string         `json:"client_phone,omitempty"`
	ProposalCount *int            `json:"proposal_count,omitempty"`
}

func ToGigResponse(g *Gig) GigResponse {
	return GigResponse{
		ID:          g.ID,
		ClientID:    g.ClientID,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
		Budget:      g.Budget,
		Deadline:    formatDate(g.Deadline),
		Status:      g.Status,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func ToSummaryResponses(rows []Summary) []GigResponse {
	out := make([]GigResponse, 0, len(rows))
	for i := range rows {
		resp := ToGigResponse(&rows[i].Gig)
		resp.ClientName = rows[i].ClientName
		resp.ClientEmail = rows[i].ClientEmail
		out = append(out, resp)
	}
	return out
}

func ToDetailResponse(d *Detail) GigResponse {
	resp := ToGigResponse(&d.Gig)
	resp.ClientName = d.ClientName
	resp.ClientEmail = d.ClientEmail
	resp.ClientPhone = d.ClientPhone
	count := d.ProposalCount
	resp.ProposalCount = &count
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
