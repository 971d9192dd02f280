package ledger

import "time"

// Choice is the direction of a cast vote.
type Choice string

const (
	ChoiceFor     Choice = "for"
	ChoiceAgainst Choice = "against"
)

// ValidChoice reports whether s names a known vote direction.
func ValidChoice(s string) bool {
	return Choice(s) == ChoiceFor || Choice(s) == ChoiceAgainst
}

// Proposal is a governance item with a bounded voting window.
// StartTime/EndTime are Unix seconds. Active records only that the
// proposal was never explicitly closed; every eligibility decision
// uses OpenAt instead of the stored flag.
type Proposal struct {
	ID               uint64 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title            string `gorm:"size:255;not null" json:"title"`
	Description      string `gorm:"type:text;not null" json:"description"`
	Creator          string `gorm:"size:64;not null" json:"creator"`
	StartTime        int64  `gorm:"not null" json:"startTime"`
	EndTime          int64  `gorm:"not null" json:"endTime"`
	VoteCountFor     uint64 `gorm:"not null;default:0" json:"voteCountFor"`
	VoteCountAgainst uint64 `gorm:"not null;default:0" json:"voteCountAgainst"`
	Active           bool   `gorm:"not null;default:true" json:"active"`
}

// OpenAt reports whether the voting window contains the given instant.
func (p Proposal) OpenAt(now time.Time) bool {
	t := now.Unix()
	return t >= p.StartTime && t < p.EndTime
}

// VoteRecord is the immutable fact that one account cast one choice on
// one proposal. The composite primary key carries the one-vote-per-pair
// invariant into the schema.
type VoteRecord struct {
	ProposalID uint64 `gorm:"primaryKey;autoIncrement:false" json:"proposalId"`
	Account    string `gorm:"primaryKey;size:64" json:"account"`
	Choice     Choice `gorm:"size:8;not null" json:"choice"`
	Timestamp  int64  `gorm:"not null" json:"timestamp"`
}

// MigrateModels is the set of persisted ledger models, in dependency
// order for AutoMigrate.
var MigrateModels = []interface{}{&Proposal{}, &VoteRecord{}}
