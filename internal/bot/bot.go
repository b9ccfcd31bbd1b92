// Package bot handles the chat platform side of the storefront: the buy
// flow, purchase tickets, and delivery confirmation.
package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/delivery"
)

// SessionAPI is the slice of the chat platform session the handlers use.
// *discordgo.Session satisfies it; tests substitute a fake.
type SessionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ThreadStartComplex(channelID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ThreadMemberAdd(threadID, memberID string, options ...discordgo.RequestOption) error
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelEdit(channelID string, data *discordgo.ChannelEdit, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	Application(appID string) (*discordgo.Application, error)
}

type Bot struct {
	session   SessionAPI
	catalog   *catalog.Service
	delivery  *delivery.Service
	tickets   *TicketRegistry
	collector *ProofCollector
	logger    *zap.Logger

	handlers map[actionKind]func(*discordgo.InteractionCreate, action) error

	// Timings, shortened in tests.
	proofWindow       time.Duration
	deliveredArchive  time.Duration
	manualCloseDelay  time.Duration
	threadAutoArchive int // minutes
}

func New(session SessionAPI, adder HandlerAdder, cat *catalog.Service, del *delivery.Service, logger *zap.Logger) *Bot {
	b := &Bot{
		session:   session,
		catalog:   cat,
		delivery:  del,
		tickets:   NewTicketRegistry(),
		collector: NewProofCollector(adder),
		logger:    logger,

		proofWindow:       120 * time.Second,
		deliveredArchive:  10 * time.Second,
		manualCloseDelay:  5 * time.Second,
		threadAutoArchive: 1440,
	}
	b.handlers = map[actionKind]func(*discordgo.InteractionCreate, action) error{
		actionBuy:             b.handleBuy,
		actionSelectItem:      b.handleSelectItem,
		actionConfirmDelivery: b.handleConfirmDelivery,
		actionCloseTicket:     b.handleCloseTicket,
	}
	return b
}

// Register wires the interaction handler into a live session.
func (b *Bot) Register(s *discordgo.Session) {
	s.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		b.HandleInteraction(i)
	})
}

// HandleInteraction dispatches a component interaction to its handler.
// Handler errors and panics never escape: both are logged and turned
// into a generic user-facing apology.
func (b *Bot) HandleInteraction(i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("interaction handler panicked",
				zap.String("custom_id", i.MessageComponentData().CustomID), zap.Any("panic", r))
			b.apologize(i)
		}
	}()
	act, ok := parseAction(i.MessageComponentData().CustomID)
	if !ok {
		return
	}
	if err := b.handlers[act.kind](i, act); err != nil {
		b.logger.Error("interaction failed",
			zap.String("custom_id", i.MessageComponentData().CustomID), zap.Error(err))
		b.apologize(i)
	}
}

func (b *Bot) apologize(i *discordgo.InteractionCreate) {
	const msg = "Ocorreu um erro ao processar sua solicitação."
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: msg, Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		// Already responded or deferred; fall back to a followup.
		_, _ = b.session.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Content: msg, Flags: discordgo.MessageFlagsEphemeral,
		})
	}
}

// approver resolves the designated delivery approver. Fetched fresh on
// every transition so an owner change mid-flow is picked up.
func (b *Bot) approver() (*discordgo.User, error) {
	app, err := b.session.Application("@me")
	if err != nil {
		return nil, err
	}
	return app.Owner, nil
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// disableComponents returns a copy of the component tree with every button
// disabled. Used to make confirm/close idempotent against double clicks.
func disableComponents(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, comp := range components {
		row, ok := comp.(*discordgo.ActionsRow)
		if !ok {
			out = append(out, comp)
			continue
		}
		newRow := discordgo.ActionsRow{}
		for _, inner := range row.Components {
			if btn, ok := inner.(*discordgo.Button); ok {
				copied := *btn
				copied.Disabled = true
				newRow.Components = append(newRow.Components, copied)
			} else {
				newRow.Components = append(newRow.Components, inner)
			}
		}
		out = append(out, newRow)
	}
	return out
}
