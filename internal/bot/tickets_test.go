package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketLifecycle(t *testing.T) {
	reg := NewTicketRegistry()

	ticket := reg.Create("MANGO", "buyer-1", "thread-1")
	require.NotEmpty(t, ticket.ID)
	assert.Equal(t, TicketOpen, reg.State(ticket.ID))

	got, ok := reg.Get(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, ticket, got)

	assert.True(t, reg.Transition(ticket.ID, TicketOpen, TicketAwaitingProof))
	assert.Equal(t, TicketAwaitingProof, reg.State(ticket.ID))

	// A second confirm click loses the state race.
	assert.False(t, reg.Transition(ticket.ID, TicketOpen, TicketAwaitingProof))

	assert.True(t, reg.Transition(ticket.ID, TicketAwaitingProof, TicketDelivered))
	assert.True(t, reg.Archive(ticket.ID))
	assert.Equal(t, TicketArchived, reg.State(ticket.ID))

	// Archival is terminal and idempotent.
	assert.False(t, reg.Archive(ticket.ID))
}

func TestManualCloseFromOpen(t *testing.T) {
	reg := NewTicketRegistry()
	ticket := reg.Create("MANGO", "buyer-1", "thread-1")

	assert.True(t, reg.Archive(ticket.ID))
	assert.False(t, reg.Archive(ticket.ID))
}

func TestUnknownTicket(t *testing.T) {
	reg := NewTicketRegistry()

	_, ok := reg.Get("nope")
	assert.False(t, ok)
	assert.False(t, reg.Transition("nope", TicketOpen, TicketAwaitingProof))
	assert.False(t, reg.Archive("nope"))
}
