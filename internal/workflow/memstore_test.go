// AngelaMos | 2026
// memstore_test.go

package workflow

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/gig"
	"github.com/carterperez-dev/freelancehub/internal/proposal"
	"github.com/carterperez-dev/freelancehub/internal/transaction"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory UnitOfWork. Do holds one lock for the whole
// unit, standing in for row locks, and restores a snapshot when fn fails.
type memStore struct {
	mu sync.Mutex

	gigs         map[int64]gig.Gig
	proposals    map[int64]proposal.Proposal
	transactions map[int64]transaction.Transaction
	nextID       int64

	failTransactionCreate bool
	failGigTransition     bool
	commits               int
	rollbacks             int
}

func newMemStore() *memStore {
	return &memStore{
		gigs:         map[int64]gig.Gig{},
		proposals:    map[int64]proposal.Proposal{},
		transactions: map[int64]transaction.Transaction{},
	}
}

func (s *memStore) Do(ctx context.Context, fn func(r Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gigs := maps.Clone(s.gigs)
	proposals := maps.Clone(s.proposals)
	transactions := maps.Clone(s.transactions)
	nextID := s.nextID

	if err := fn(s.repos()); err != nil {
		s.gigs, s.proposals, s.transactions, s.nextID = gigs, proposals, transactions, nextID
		s.rollbacks++
		return err
	}
	s.commits++
	return nil
}

func (s *memStore) repos() Repos {
	return Repos{
		Gigs:         memGigs{s},
		Proposals:    memProposals{s},
		Transactions: memTransactions{s},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// ============================================================================
// Gigs
// ============================================================================

type memGigs struct{ s *memStore }

func (m memGigs) Create(_ context.Context, g *gig.Gig) error {
	g.ID = m.s.id()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	m.s.gigs[g.ID] = *g
	return nil
}

func (m memGigs) GetByID(_ context.Context, id int64) (*gig.Gig, error) {
	g, ok := m.s.gigs[id]
	if !ok {
		return nil, fmt.Errorf("get gig: %w", core.ErrNotFound)
	}
	return &g, nil
}

func (m memGigs) GetForUpdate(ctx context.Context, id int64) (*gig.Gig, error) {
	return m.GetByID(ctx, id)
}

func (m memGigs) GetDetail(ctx context.Context, id int64) (*gig.Detail, error) {
	g, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &gig.Detail{Gig: *g}, nil
}

func (m memGigs) List(context.Context, gig.ListParams) ([]gig.Summary, error) {
	out := []gig.Summary{}
	for _, g := range m.s.gigs {
		out = append(out, gig.Summary{Gig: g})
	}
	return out, nil
}

func (m memGigs) Update(_ context.Context, g *gig.Gig, expectedStatus string) error {
	cur, ok := m.s.gigs[g.ID]
	if !ok || cur.Status != expectedStatus {
		return fmt.Errorf("update gig: %w", core.ErrConflict)
	}
	m.s.gigs[g.ID] = *g
	return nil
}

func (m memGigs) Delete(_ context.Context, id int64) error {
	delete(m.s.gigs, id)
	return nil
}

func (m memGigs) HasTransactions(_ context.Context, id int64) (bool, error) {
	for _, t := range m.s.transactions {
		if t.GigID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m memGigs) TransitionStatus(_ context.Context, id int64, from, to string) error {
	if m.s.failGigTransition {
		return errInjected
	}
	g, ok := m.s.gigs[id]
	if !ok || g.Status != from {
		return fmt.Errorf("transition gig %d %s->%s: %w", id, from, to, core.ErrConflict)
	}
	g.Status = to
	m.s.gigs[id] = g
	return nil
}

// ============================================================================
// Proposals
// ============================================================================

type memProposals struct{ s *memStore }

func (m memProposals) Create(_ context.Context, p *proposal.Proposal) error {
	g, ok := m.s.gigs[p.GigID]
	if !ok || !g.IsOpen() {
		return fmt.Errorf("create proposal: %w", proposal.ErrGigNotOpen)
	}
	for _, existing := range m.s.proposals {
		if existing.GigID == p.GigID && existing.FreelancerID == p.FreelancerID {
			return fmt.Errorf("create proposal: %w", core.ErrDuplicateKey)
		}
	}
	p.ID = m.s.id()
	p.Status = proposal.StatusPending
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.s.proposals[p.ID] = *p
	return nil
}

func (m memProposals) GetByID(_ context.Context, id int64) (*proposal.Proposal, error) {
	p, ok := m.s.proposals[id]
	if !ok {
		return nil, fmt.Errorf("get proposal: %w", core.ErrNotFound)
	}
	return &p, nil
}

func (m memProposals) Exists(_ context.Context, gigID, freelancerID int64) (bool, error) {
	for _, p := range m.s.proposals {
		if p.GigID == gigID && p.FreelancerID == freelancerID {
			return true, nil
		}
	}
	return false, nil
}

func (m memProposals) ListByGig(_ context.Context, gigID int64) ([]proposal.ForClient, error) {
	out := []proposal.ForClient{}
	for _, p := range m.s.proposals {
		if p.GigID == gigID {
			out = append(out, proposal.ForClient{Proposal: p})
		}
	}
	return out, nil
}

func (m memProposals) ListByFreelancer(
	_ context.Context,
	freelancerID int64,
) ([]proposal.ForFreelancer, error) {
	out := []proposal.ForFreelancer{}
	for _, p := range m.s.proposals {
		if p.FreelancerID == freelancerID {
			out = append(out, proposal.ForFreelancer{Proposal: p})
		}
	}
	return out, nil
}

func (m memProposals) DeletePending(_ context.Context, id int64) error {
	p, ok := m.s.proposals[id]
	if !ok {
		return fmt.Errorf("delete proposal: %w", core.ErrNotFound)
	}
	if !p.IsPending() {
		return fmt.Errorf("delete proposal: %w", core.ErrConflict)
	}
	delete(m.s.proposals, id)
	return nil
}

func (m memProposals) GetWithGigForUpdate(
	_ context.Context,
	id int64,
) (*proposal.WithGig, error) {
	p, ok := m.s.proposals[id]
	if !ok {
		return nil, fmt.Errorf("get proposal for update: %w", core.ErrNotFound)
	}
	g := m.s.gigs[p.GigID]
	return &proposal.WithGig{Proposal: p, GigClientID: g.ClientID, GigStatus: g.Status}, nil
}

func (m memProposals) TransitionStatus(_ context.Context, target *proposal.Proposal, to string) error {
	p, ok := m.s.proposals[target.ID]
	if !ok || p.Status != target.Status {
		return fmt.Errorf("transition proposal %d %s->%s: %w", target.ID, target.Status, to, core.ErrConflict)
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	m.s.proposals[target.ID] = p
	target.Status = p.Status
	target.UpdatedAt = p.UpdatedAt
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

type memTransactions struct{ s *memStore }

func (m memTransactions) Create(_ context.Context, t *transaction.Transaction) error {
	if m.s.failTransactionCreate {
		return errInjected
	}
	for _, existing := range m.s.transactions {
		if existing.ProposalID == t.ProposalID {
			return fmt.Errorf("create transaction: %w", core.ErrDuplicateKey)
		}
	}
	t.ID = m.s.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.s.transactions[t.ID] = *t
	return nil
}

func (m memTransactions) GetByID(_ context.Context, id int64) (*transaction.Transaction, error) {
	t, ok := m.s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("get transaction: %w", core.ErrNotFound)
	}
	return &t, nil
}

func (m memTransactions) GetForUpdate(
	ctx context.Context,
	id int64,
) (*transaction.Transaction, error) {
	return m.GetByID(ctx, id)
}

func (m memTransactions) GetDetail(ctx context.Context, id int64) (*transaction.Detail, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transaction.Detail{Transaction: *t}, nil
}

func (m memTransactions) ListForClient(
	_ context.Context,
	clientID int64,
) ([]transaction.Summary, error) {
	out := []transaction.Summary{}
	for _, t := range m.s.transactions {
		if t.ClientID == clientID {
			out = append(out, transaction.Summary{Transaction: t})
		}
	}
	return out, nil
}

func (m memTransactions) ListForFreelancer(
	_ context.Context,
	freelancerID int64,
) ([]transaction.Summary, error) {
	out := []transaction.Summary{}
	for _, t := range m.s.transactions {
		if t.FreelancerID == freelancerID {
			out = append(out, transaction.Summary{Transaction: t})
		}
	}
	return out, nil
}

func (m memTransactions) TransitionStatus(
	_ context.Context,
	t *transaction.Transaction,
	to string,
) error {
	cur, ok := m.s.transactions[t.ID]
	if !ok || cur.Status != t.Status {
		return fmt.Errorf("transition transaction %d: %w", t.ID, core.ErrConflict)
	}

	now := time.Now()
	cur.Status = to
	cur.UpdatedAt = now
	switch to {
	case transaction.StatusPaid:
		cur.PaymentDate = &now
	case transaction.StatusCompleted:
		cur.CompletionDate = &now
	}
	m.s.transactions[t.ID] = cur
	*t = cur
	return nil
}
