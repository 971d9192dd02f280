package ledger

import "context"

// Query exposes read-only views over the store and vote index. Reads
// never mutate state; each returns a snapshot of the latest completed
// write because store mutations are atomic.
type Query struct {
	store Store
	index *VoteIndex
}

func NewQuery(store Store, index *VoteIndex) *Query {
	return &Query{store: store, index: index}
}

func (q *Query) GetProposal(ctx context.Context, id uint64) (Proposal, error) {
	return q.store.GetProposal(ctx, id)
}

func (q *Query) AllProposals(ctx context.Context) ([]Proposal, error) {
	return q.store.ListProposals(ctx)
}

// HasUserVoted reports whether account has a recorded vote on the
// proposal. Unknown proposals simply report false, matching the
// contract surface the front end consumes.
func (q *Query) HasUserVoted(_ context.Context, proposalID uint64, account string) bool {
	return q.index.HasVoted(proposalID, account)
}
