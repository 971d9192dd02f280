package ledger

import "sync"

type voteKey struct {
	proposal uint64
	account  string
}

// VoteIndex answers "has this account already voted on this proposal"
// without scanning vote records. It is rebuilt from the Store at
// startup and afterwards written only by the Engine under its
// per-proposal critical section.
type VoteIndex struct {
	mu    sync.RWMutex
	voted map[voteKey]struct{}
}

func NewVoteIndex() *VoteIndex {
	return &VoteIndex{voted: make(map[voteKey]struct{})}
}

func (ix *VoteIndex) HasVoted(proposalID uint64, account string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.voted[voteKey{proposalID, account}]
	return ok
}

// MarkVoted records the pair and reports whether it was newly marked.
// A false return means the caller violated the single-invocation
// contract; the Engine treats that as an internal invariant failure.
func (ix *VoteIndex) MarkVoted(proposalID uint64, account string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	k := voteKey{proposalID, account}
	if _, ok := ix.voted[k]; ok {
		return false
	}
	ix.voted[k] = struct{}{}
	return true
}

// Rebuild resets the index to exactly the given records.
func (ix *VoteIndex) Rebuild(recs []VoteRecord) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.voted = make(map[voteKey]struct{}, len(recs))
	for _, r := range recs {
		ix.voted[voteKey{r.ProposalID, r.Account}] = struct{}{}
	}
}
