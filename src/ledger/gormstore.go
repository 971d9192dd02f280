package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// GormStore persists the ledger through GORM (MySQL in production,
// sqlite in tests). The composite primary key on vote_records enforces
// one vote per (proposal, account) at the schema level, backing up the
// Engine's critical section across restarts and operator SQL.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InsertProposal(ctx context.Context, p Proposal) (Proposal, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Sequential ids from 0, no gaps. The Engine serializes
		// creation so max+1 cannot race within one process.
		var next uint64
		if err := tx.Model(&Proposal{}).
			Select("COALESCE(MAX(id)+1, 0)").Scan(&next).Error; err != nil {
			return err
		}
		p.ID = next
		return tx.Create(&p).Error
	})
	if err != nil {
		return Proposal{}, unavailable("insert proposal", err)
	}
	return p, nil
}

func (s *GormStore) GetProposal(ctx context.Context, id uint64) (Proposal, error) {
	var p Proposal
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Proposal{}, fmt.Errorf("proposal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Proposal{}, unavailable("load proposal", err)
	}
	return p, nil
}

func (s *GormStore) ListProposals(ctx context.Context) ([]Proposal, error) {
	var out []Proposal
	if err := s.db.WithContext(ctx).Order("id asc").Find(&out).Error; err != nil {
		return nil, unavailable("list proposals", err)
	}
	return out, nil
}

func (s *GormStore) AppendVote(ctx context.Context, rec VoteRecord) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Proposal
		if err := tx.First(&p, "id = ?", rec.ProposalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("proposal %d: %w", rec.ProposalID, ErrNotFound)
			}
			return err
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("proposal %d account %s: %w",
					rec.ProposalID, rec.Account, ErrDuplicateVote)
			}
			return err
		}
		col := "vote_count_for"
		if rec.Choice == ChoiceAgainst {
			col = "vote_count_against"
		}
		return tx.Model(&Proposal{}).Where("id = ?", rec.ProposalID).
			UpdateColumn(col, gorm.Expr(col+" + 1")).Error
	})
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateVote) {
		return err
	}
	return unavailable("append vote", err)
}

func (s *GormStore) ListVotes(ctx context.Context) ([]VoteRecord, error) {
	var out []VoteRecord
	if err := s.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, unavailable("list votes", err)
	}
	return out, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
}
