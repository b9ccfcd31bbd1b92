package bot

import (
	"strings"

	"storefront-bot/internal/catalog"
)

// Component custom ids. Ticket-scoped actions carry an opaque ticket id
// after the colon; nothing else is encoded in the identifier.
const (
	selectMenuID        = "select_item_to_buy"
	confirmActionPrefix = "confirm_delivery"
	closeActionPrefix   = "close_ticket"
)

type actionKind int

const (
	actionBuy actionKind = iota
	actionSelectItem
	actionConfirmDelivery
	actionCloseTicket
)

type action struct {
	kind     actionKind
	ticketID string
}

func confirmCustomID(ticketID string) string { return confirmActionPrefix + ":" + ticketID }
func closeCustomID(ticketID string) string   { return closeActionPrefix + ":" + ticketID }

// parseAction maps a component custom id onto a tagged action variant.
func parseAction(customID string) (action, bool) {
	switch customID {
	case catalog.BuyButtonID:
		return action{kind: actionBuy}, true
	case selectMenuID:
		return action{kind: actionSelectItem}, true
	}

	prefix, ticketID, found := strings.Cut(customID, ":")
	if !found || ticketID == "" {
		return action{}, false
	}
	switch prefix {
	case confirmActionPrefix:
		return action{kind: actionConfirmDelivery, ticketID: ticketID}, true
	case closeActionPrefix:
		return action{kind: actionCloseTicket, ticketID: ticketID}, true
	}
	return action{}, false
}
