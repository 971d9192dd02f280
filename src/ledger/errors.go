package ledger

import "errors"

// Failure taxonomy surfaced by ledger commands and queries. Callers
// match with errors.Is; wrapped messages carry the proposal id and
// account involved.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("proposal not found")
	ErrProposalClosed = errors.New("voting period closed")
	ErrDuplicateVote  = errors.New("account already voted")
	ErrUnavailable    = errors.New("store unavailable")
)
