package bot

import (
	"sync"

	"github.com/google/uuid"
)

type TicketState string

const (
	// TicketOpen: thread created, waiting for negotiation or confirmation.
	TicketOpen TicketState = "open"
	// TicketAwaitingProof: approver confirmed, proof window running.
	TicketAwaitingProof TicketState = "awaiting_proof"
	// TicketDelivered: delivery recorded, thread scheduled for archival.
	TicketDelivered TicketState = "delivered"
	// TicketArchived: terminal.
	TicketArchived TicketState = "archived"
)

// Ticket is the server-side record of a purchase thread. Component custom
// ids reference it by its opaque id only.
type Ticket struct {
	ID       string
	ItemID   string
	BuyerID  string
	ThreadID string

	// deliverOnce guards the delivery side effect: the proof collector
	// and the timeout path converge here exactly once.
	deliverOnce sync.Once
}

// TicketRegistry keeps live tickets in memory. Tickets die with the
// process; the threads themselves auto-archive after 24h anyway.
type TicketRegistry struct {
	mu      sync.Mutex
	tickets map[string]*Ticket
	states  map[string]TicketState
}

func NewTicketRegistry() *TicketRegistry {
	return &TicketRegistry{
		tickets: make(map[string]*Ticket),
		states:  make(map[string]TicketState),
	}
}

func (r *TicketRegistry) Create(itemID, buyerID, threadID string) *Ticket {
	t := &Ticket{
		ID:       uuid.NewString(),
		ItemID:   itemID,
		BuyerID:  buyerID,
		ThreadID: threadID,
	}
	r.mu.Lock()
	r.tickets[t.ID] = t
	r.states[t.ID] = TicketOpen
	r.mu.Unlock()
	return t
}

func (r *TicketRegistry) Get(id string) (*Ticket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	return t, ok
}

func (r *TicketRegistry) State(id string) TicketState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[id]
}

// Transition moves a ticket from one state to another atomically. It
// returns false when the ticket is unknown or not in the expected state,
// which doubles as the double-click guard.
func (r *TicketRegistry) Transition(id string, from, to TicketState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[id] != from {
		return false
	}
	r.states[id] = to
	return true
}

// Archive is the terminal transition; valid from any non-archived state.
func (r *TicketRegistry) Archive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok || r.states[id] == TicketArchived {
		return false
	}
	r.states[id] = TicketArchived
	return true
}
