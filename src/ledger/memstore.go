package ledger

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps the ledger in process memory. Used in development
// and tests; the ids double as slice indexes so insertion order is
// ascending id order for free.
type MemoryStore struct {
	mu        sync.RWMutex
	proposals []Proposal
	votes     []VoteRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertProposal(_ context.Context, p Proposal) (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uint64(len(s.proposals))
	s.proposals = append(s.proposals, p)
	return p, nil
}

func (s *MemoryStore) GetProposal(_ context.Context, id uint64) (Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id >= uint64(len(s.proposals)) {
		return Proposal{}, fmt.Errorf("proposal %d: %w", id, ErrNotFound)
	}
	return s.proposals[id], nil
}

func (s *MemoryStore) ListProposals(_ context.Context) ([]Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Proposal, len(s.proposals))
	copy(out, s.proposals)
	return out, nil
}

func (s *MemoryStore) AppendVote(_ context.Context, rec VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ProposalID >= uint64(len(s.proposals)) {
		return fmt.Errorf("proposal %d: %w", rec.ProposalID, ErrNotFound)
	}
	for _, v := range s.votes {
		if v.ProposalID == rec.ProposalID && v.Account == rec.Account {
			return fmt.Errorf("proposal %d account %s: %w", rec.ProposalID, rec.Account, ErrDuplicateVote)
		}
	}
	p := &s.proposals[rec.ProposalID]
	switch rec.Choice {
	case ChoiceAgainst:
		p.VoteCountAgainst++
	default:
		p.VoteCountFor++
	}
	s.votes = append(s.votes, rec)
	return nil
}

func (s *MemoryStore) ListVotes(_ context.Context) ([]VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VoteRecord, len(s.votes))
	copy(out, s.votes)
	return out, nil
}
