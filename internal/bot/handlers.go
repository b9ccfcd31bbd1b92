package bot

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/delivery"
	"storefront-bot/internal/models"
)

// handleBuy answers the buy button with an ephemeral item menu, or an
// out-of-stock notice when nothing is available.
func (b *Bot) handleBuy(i *discordgo.InteractionCreate, _ action) error {
	if err := b.deferEphemeral(i); err != nil {
		return err
	}

	items, err := b.catalog.ListAvailable()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return b.editDeferred(i, "Desculpe, todos os nossos itens estão esgotados no momento.")
	}

	options := make([]discordgo.SelectMenuOption, 0, len(items))
	for _, item := range items {
		opt := discordgo.SelectMenuOption{
			Label:       item.Name,
			Value:       item.ID,
			Description: fmt.Sprintf("Preço: R$%s | Estoque: %d", item.Price.StringFixed(2), item.Quantity),
		}
		if item.Emoji != "" {
			opt.Emoji = &discordgo.ComponentEmoji{Name: item.Emoji}
		}
		options = append(options, opt)
	}

	content := "Por favor, selecione o item que você deseja comprar:"
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    selectMenuID,
					Placeholder: "Selecione um item para comprar",
					Options:     options,
				},
			},
		},
	}
	_, err = b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &components,
	})
	return err
}

// handleSelectItem opens the purchase ticket: a private thread with the
// buyer and the approver, a close button, and (when the approver is known)
// a confirm-delivery prompt.
func (b *Bot) handleSelectItem(i *discordgo.InteractionCreate, _ action) error {
	if err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return err
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}

	// The rendered menu may be stale relative to the catalog.
	item, err := b.catalog.Get(values[0])
	if errors.Is(err, catalog.ErrNotFound) {
		return b.followupEphemeral(i, "O item selecionado não foi encontrado.")
	}
	if err != nil {
		return err
	}

	approver, err := b.approver()
	if err != nil {
		return err
	}
	buyer := interactionUser(i)

	thread, err := b.session.ThreadStartComplex(i.ChannelID, &discordgo.ThreadStart{
		Name:                fmt.Sprintf("Compra de %s - %s", item.Name, buyer.Username),
		AutoArchiveDuration: b.threadAutoArchive,
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		Invitable:           false,
	})
	if err != nil {
		return err
	}

	if err := b.session.ThreadMemberAdd(thread.ID, buyer.ID); err != nil {
		return err
	}
	if approver != nil {
		if err := b.session.ThreadMemberAdd(thread.ID, approver.ID); err != nil {
			return err
		}
	}

	ticket := b.tickets.Create(item.ID, buyer.ID, thread.ID)
	b.logger.Info("ticket opened",
		zap.String("ticket", ticket.ID), zap.String("item", item.ID),
		zap.String("buyer", buyer.ID), zap.String("thread", thread.ID))

	welcome := fmt.Sprintf(
		"Olá <@%s>! Este é o seu ticket para a compra de **%s %s**.\nPor favor, discutam os detalhes da transação aqui.",
		buyer.ID, item.Emoji, item.Name)
	if approver != nil {
		welcome = fmt.Sprintf(
			"Olá <@%s> e <@%s>! Este é o seu ticket para a compra de **%s %s**.\nPor favor, discutam os detalhes da transação aqui.",
			buyer.ID, approver.ID, item.Emoji, item.Name)
	}
	_, err = b.session.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
		Content: welcome,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Fechar Ticket",
						Style:    discordgo.DangerButton,
						CustomID: closeCustomID(ticket.ID),
					},
				},
			},
		},
	})
	if err != nil {
		return err
	}

	if approver != nil {
		_, err = b.session.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
			Content: fmt.Sprintf("<@%s>, o pedido já foi entregue?", approver.ID),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							Label:    "Confirmar Entrega",
							Style:    discordgo.SuccessButton,
							CustomID: confirmCustomID(ticket.ID),
						},
					},
				},
			},
		})
		if err != nil {
			return err
		}
	}

	return b.followupEphemeral(i, fmt.Sprintf("Seu ticket de compra foi criado com sucesso: <#%s>", thread.ID))
}

// handleConfirmDelivery is approver-only. It disables the confirm button
// and opens the proof collection window; the delivery itself happens when
// the window yields (message or timeout).
func (b *Bot) handleConfirmDelivery(i *discordgo.InteractionCreate, act action) error {
	ticket, ok := b.tickets.Get(act.ticketID)
	if !ok {
		return b.replyEphemeral(i, "Este ticket não está mais ativo.")
	}

	approver, err := b.approver()
	if err != nil {
		return err
	}
	clicker := interactionUser(i)
	if approver == nil || clicker == nil || clicker.ID != approver.ID {
		return b.replyEphemeral(i, "Apenas o administrador pode confirmar a entrega.")
	}

	// Double clicks lose the state race and stop here.
	if !b.tickets.Transition(ticket.ID, TicketOpen, TicketAwaitingProof) {
		return b.replyEphemeral(i, "Esta entrega já está sendo processada.")
	}

	if err := b.deferEphemeral(i); err != nil {
		return err
	}
	if err := b.disableMessageButtons(i); err != nil {
		return err
	}
	if err := b.editDeferred(i, "Botão desativado. Processando..."); err != nil {
		return err
	}
	if err := b.followupEphemeral(i, "Por favor, envie a foto de comprovação e/ou uma nota para a entrega (ex: \"entregue em mãos\"). Você tem 2 minutos."); err != nil {
		return err
	}

	go b.awaitProof(ticket, approver.ID)
	return nil
}

// awaitProof runs the 120s collection window and performs the delivery
// side effect exactly once, on whichever path fires first. The archive
// timer is set once the window resolves, whether or not the delivery
// could be recorded.
func (b *Bot) awaitProof(ticket *Ticket, approverID string) {
	threadID := ticket.ThreadID
	proof := b.collector.Await(threadID, approverID, b.proofWindow)

	note := proof.Note
	if proof.TimedOut {
		note = "Entrega confirmada pelo painel do ticket."
	}

	var record *models.DeliveryRecord
	var deliverErr error
	ticket.deliverOnce.Do(func() {
		record, deliverErr = b.delivery.Create(delivery.CreateParams{
			Mention:           ticket.BuyerID,
			ItemID:            ticket.ItemID,
			Quantity:          1,
			Note:              note,
			PhotoURL:          proof.PhotoURL,
			DecrementStock:    true,
			FeedbackChannelID: threadID,
		})
	})
	switch {
	case deliverErr != nil:
		b.logger.Error("ticket delivery failed",
			zap.String("ticket", ticket.ID), zap.Error(deliverErr))
		b.sendToThread(threadID, "❌ Não foi possível registrar a entrega. Avise um administrador.")
	case record != nil:
		b.tickets.Transition(ticket.ID, TicketAwaitingProof, TicketDelivered)
		notice := "✅ Entrega registrada com sucesso no canal de entregas!"
		if proof.TimedOut {
			notice = "⏳ Tempo esgotado. A entrega foi registrada sem foto ou nota."
		}
		b.sendToThread(threadID, notice)
	}

	b.sendToThread(threadID, "Este ticket será fechado em 10 segundos.")
	time.AfterFunc(b.deliveredArchive, func() {
		b.archiveThread(ticket.ID, threadID)
	})
}

// handleCloseTicket archives the thread after a short grace period.
func (b *Bot) handleCloseTicket(i *discordgo.InteractionCreate, act action) error {
	ticket, ok := b.tickets.Get(act.ticketID)
	if !ok {
		return b.replyEphemeral(i, "Este ticket não está mais ativo.")
	}
	if !b.tickets.Archive(ticket.ID) {
		return b.replyEphemeral(i, "Este ticket já está sendo fechado.")
	}

	if err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: "O ticket será fechado em 5 segundos..."},
	}); err != nil {
		return err
	}
	if err := b.disableMessageButtons(i); err != nil {
		return err
	}

	// Archive the ticket's own thread, not the channel the click came
	// from.
	time.AfterFunc(b.manualCloseDelay, func() {
		b.archiveChannel(ticket.ThreadID)
	})
	return nil
}

func (b *Bot) archiveThread(ticketID, threadID string) {
	b.tickets.Archive(ticketID)
	b.archiveChannel(threadID)
}

func (b *Bot) archiveChannel(threadID string) {
	archived := true
	if _, err := b.session.ChannelEdit(threadID, &discordgo.ChannelEdit{Archived: &archived}); err != nil {
		b.logger.Warn("thread archive failed", zap.String("thread", threadID), zap.Error(err))
	}
}

func (b *Bot) sendToThread(threadID, content string) {
	if _, err := b.session.ChannelMessageSendComplex(threadID, &discordgo.MessageSend{Content: content}); err != nil {
		b.logger.Warn("thread message failed", zap.String("thread", threadID), zap.Error(err))
	}
}

func (b *Bot) deferEphemeral(i *discordgo.InteractionCreate) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) editDeferred(i *discordgo.InteractionCreate, content string) error {
	_, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (b *Bot) replyEphemeral(i *discordgo.InteractionCreate, content string) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (b *Bot) followupEphemeral(i *discordgo.InteractionCreate, content string) error {
	_, err := b.session.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: content, Flags: discordgo.MessageFlagsEphemeral,
	})
	return err
}

func (b *Bot) disableMessageButtons(i *discordgo.InteractionCreate) error {
	if i.Message == nil {
		return nil
	}
	disabled := disableComponents(i.Message.Components)
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    i.ChannelID,
		ID:         i.Message.ID,
		Components: &disabled,
	})
	return err
}
