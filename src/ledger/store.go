package ledger

import "context"

// Store owns the canonical proposal and vote records. Implementations
// must make AppendVote atomic: the tally increment and the record
// append land together or not at all. The Engine performs all
// eligibility checks before calling AppendVote.
type Store interface {
	// InsertProposal persists p under the next sequential id (starting
	// at 0) and returns the stored copy.
	InsertProposal(ctx context.Context, p Proposal) (Proposal, error)

	// GetProposal returns ErrNotFound for an unknown id.
	GetProposal(ctx context.Context, id uint64) (Proposal, error)

	// ListProposals returns all proposals in ascending id order.
	ListProposals(ctx context.Context) ([]Proposal, error)

	// AppendVote bumps the matching tally by one and stores rec.
	// Returns ErrNotFound for an unknown proposal and ErrDuplicateVote
	// if a record for (proposal, account) already exists.
	AppendVote(ctx context.Context, rec VoteRecord) error

	// ListVotes returns every vote record; used to rebuild the account
	// vote index after a restart.
	ListVotes(ctx context.Context) ([]VoteRecord, error)
}
