package ledger

import (
	"sync"
	"time"
)

type EventType string

const (
	EventProposalCreated EventType = "proposal.created"
	EventVoteCast        EventType = "vote.cast"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      any
}

type ProposalCreatedEvent struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	Creator   string `json:"creator"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

type VoteCastEvent struct {
	ProposalID uint64 `json:"proposalId"`
	Account    string `json:"account"`
	Choice     Choice `json:"choice"`
}

// Bus fans ledger events out to subscribers. Delivery is best-effort
// and at-most-once: a subscriber whose channel is full loses the event
// rather than blocking a vote. Ledger correctness never depends on
// delivery succeeding.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel carrying future events. buffer bounds how
// far the subscriber may lag before events are dropped.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Publish(t EventType, data any) {
	evt := Event{Type: t, Timestamp: time.Now(), Data: data}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
