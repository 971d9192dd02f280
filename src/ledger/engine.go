package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

const (
	secondsPerDay = 86400

	// Vote mutations for one proposal serialize on a striped mutex.
	// Stripes trade a little cross-proposal parallelism for a fixed
	// footprint; correctness only needs same-proposal exclusion.
	lockStripes = 64
)

// Engine is the authoritative gate for ledger commands. Every vote
// passes through exactly one critical section per proposal, so two
// concurrent votes from the same account can never both observe "not
// yet voted".
type Engine struct {
	store Store
	index *VoteIndex
	clock Clock
	bus   *Bus

	createMu sync.Mutex
	locks    [lockStripes]sync.Mutex
}

// NewEngine wires the engine and rebuilds the account vote index from
// the store, so duplicate detection survives restarts.
func NewEngine(ctx context.Context, store Store, index *VoteIndex, clock Clock, bus *Bus) (*Engine, error) {
	if clock == nil {
		clock = SystemClock()
	}
	if bus == nil {
		bus = NewBus()
	}
	recs, err := store.ListVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild vote index: %w", err)
	}
	index.Rebuild(recs)
	return &Engine{store: store, index: index, clock: clock, bus: bus}, nil
}

func (e *Engine) Bus() *Bus { return e.bus }

// Clock exposes the engine's time source so read paths evaluate
// voting windows against the same instant the engine does.
func (e *Engine) Clock() Clock { return e.clock }

// CreateProposal validates the command and opens a voting window of
// votingPeriodDays starting now. Title and description are stored
// trimmed.
func (e *Engine) CreateProposal(ctx context.Context, title, description string, votingPeriodDays int, creator string) (Proposal, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return Proposal{}, fmt.Errorf("empty title: %w", ErrInvalidInput)
	case description == "":
		return Proposal{}, fmt.Errorf("empty description: %w", ErrInvalidInput)
	case votingPeriodDays <= 0:
		return Proposal{}, fmt.Errorf("voting period %d days: %w", votingPeriodDays, ErrInvalidInput)
	case creator == "":
		return Proposal{}, fmt.Errorf("empty creator: %w", ErrInvalidInput)
	}

	now := e.clock.Now().Unix()
	p := Proposal{
		Title:       title,
		Description: description,
		Creator:     creator,
		StartTime:   now,
		EndTime:     now + int64(votingPeriodDays)*secondsPerDay,
		Active:      true,
	}

	// Serialize creation so sequential id assignment cannot race.
	e.createMu.Lock()
	stored, err := e.store.InsertProposal(ctx, p)
	e.createMu.Unlock()
	if err != nil {
		return Proposal{}, err
	}

	e.bus.Publish(EventProposalCreated, ProposalCreatedEvent{
		ID:        stored.ID,
		Title:     stored.Title,
		Creator:   stored.Creator,
		StartTime: stored.StartTime,
		EndTime:   stored.EndTime,
	})
	return stored, nil
}

// Vote applies one vote command. Eligibility is time-derived from the
// clock, never from the stored active flag.
func (e *Engine) Vote(ctx context.Context, proposalID uint64, account string, choice Choice) error {
	if account == "" {
		return fmt.Errorf("empty account: %w", ErrInvalidInput)
	}
	if !ValidChoice(string(choice)) {
		return fmt.Errorf("choice %q: %w", choice, ErrInvalidInput)
	}

	mu := &e.locks[proposalID%lockStripes]
	mu.Lock()
	err := e.voteLocked(ctx, proposalID, account, choice)
	mu.Unlock()
	if err != nil {
		return err
	}

	e.bus.Publish(EventVoteCast, VoteCastEvent{
		ProposalID: proposalID,
		Account:    account,
		Choice:     choice,
	})
	return nil
}

func (e *Engine) voteLocked(ctx context.Context, proposalID uint64, account string, choice Choice) error {
	p, err := e.store.GetProposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if !p.OpenAt(e.clock.Now()) {
		return fmt.Errorf("proposal %d: %w", proposalID, ErrProposalClosed)
	}
	if e.index.HasVoted(proposalID, account) {
		return fmt.Errorf("proposal %d account %s: %w", proposalID, account, ErrDuplicateVote)
	}
	if err := e.store.AppendVote(ctx, VoteRecord{
		ProposalID: proposalID,
		Account:    account,
		Choice:     choice,
		Timestamp:  e.clock.Now().Unix(),
	}); err != nil {
		return err
	}
	if !e.index.MarkVoted(proposalID, account) {
		// Index and store disagree; the record is already persisted so
		// the vote stands, but this should be impossible under the lock.
		log.Printf("vote index already marked for proposal %d account %s", proposalID, account)
	}
	return nil
}
