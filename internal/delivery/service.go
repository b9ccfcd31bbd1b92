// Package delivery implements the delivery side effect: post the
// confirmation embed, log the record, and adjust stock.
package delivery

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/discord"
	"storefront-bot/internal/models"
	"storefront-bot/internal/settings"
)

// ErrChannelNotConfigured is returned when no delivery channel is set.
var ErrChannelNotConfigured = errors.New("delivery channel not configured")

const embedColor = 3066993

var snowflakePattern = regexp.MustCompile(`^\d{17,19}$`)

type Service struct {
	db        *gorm.DB
	catalog   *catalog.Service
	settings  *settings.Service
	messenger discord.Messenger
	logger    *zap.Logger
}

func NewService(db *gorm.DB, cat *catalog.Service, set *settings.Service, messenger discord.Messenger, logger *zap.Logger) *Service {
	return &Service{db: db, catalog: cat, settings: set, messenger: messenger, logger: logger}
}

type CreateParams struct {
	Mention  string
	ItemID   string
	Quantity int
	Note     string
	PhotoURL string

	// DecrementStock is set on the bot workflow path. The panel path logs
	// the delivery without touching stock.
	DecrementStock bool
	// IncludeUnitPrice adds the unit price field shown on panel deliveries.
	IncludeUnitPrice bool
	// FeedbackChannelID, when set, receives a short error notice if the
	// delivery cannot be created (used inside purchase tickets).
	FeedbackChannelID string
}

// Create posts the delivery embed and writes the record. The record is
// written even when the outbound message fails: the audit trail does not
// depend on notification success. The send itself is not retried.
func (s *Service) Create(p CreateParams) (*models.DeliveryRecord, error) {
	cfg := s.settings.Snapshot()
	if cfg.DeliveryChannelID == "" {
		s.notifyFeedback(p.FeedbackChannelID, "Erro: Canal de entregas não configurado.")
		return nil, ErrChannelNotConfigured
	}

	item, err := s.catalog.Get(p.ItemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.notifyFeedback(p.FeedbackChannelID, "Erro: Item da entrega não encontrado.")
		}
		return nil, err
	}

	qty := p.Quantity
	if qty <= 0 {
		qty = 1
	}

	msg := s.buildMessage(p, item, qty, cfg.ClientRoleID)
	sent, sendErr := s.messenger.Send(cfg.DeliveryChannelID, msg)
	if sendErr != nil {
		s.logger.Error("delivery message send failed",
			zap.String("channel", cfg.DeliveryChannelID), zap.Error(sendErr))
	}

	record := models.DeliveryRecord{
		Mention:     p.Mention,
		ItemID:      item.ID,
		ItemName:    item.Name,
		Quantity:    qty,
		PhotoURL:    p.PhotoURL,
		MessageSent: sent != nil && sendErr == nil,
	}
	if record.MessageSent {
		record.MessageStatus = 200
	} else {
		record.MessageStatus = 500
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	if p.DecrementStock {
		if err := s.catalog.Decrement(item.ID, qty); err != nil {
			return &record, err
		}
	}

	s.logger.Info("delivery recorded",
		zap.String("item", item.ID), zap.Int("quantity", qty),
		zap.Bool("message_sent", record.MessageSent))
	return &record, nil
}

// List returns the delivery history, newest first.
func (s *Service) List() ([]models.DeliveryRecord, error) {
	var records []models.DeliveryRecord
	if err := s.db.Order("timestamp desc, id desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) buildMessage(p CreateParams, item *models.StockItem, qty int, clientRoleID string) *discordgo.MessageSend {
	var recipient, content string
	if p.DecrementStock {
		// Workflow deliveries ping the configured client role.
		if clientRoleID != "" {
			recipient = fmt.Sprintf("<@&%s>", clientRoleID)
			content = recipient
		} else {
			recipient = "Não configurado"
			content = "Nova entrega registrada!"
		}
	} else {
		recipient = p.Mention
		if recipient == "" {
			recipient = "Não informado"
		}
		content = p.Mention
		if snowflakePattern.MatchString(content) {
			content = fmt.Sprintf("<@%s>", content)
		}
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Destinatário", Value: recipient, Inline: true},
		{Name: "Produto", Value: fmt.Sprintf("%s %s", item.Emoji, item.Name), Inline: true},
		{Name: "Quantidade", Value: fmt.Sprintf("%d", qty), Inline: true},
	}
	if p.IncludeUnitPrice {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Preço Unit.", Value: "R$" + item.Price.StringFixed(2), Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       "📦 Entrega Confirmada",
		Color:       embedColor,
		Fields:      fields,
		Description: p.Note,
		Footer:      &discordgo.MessageEmbedFooter{Text: "DOLLYA STORE — Entrega"},
	}
	if p.PhotoURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.PhotoURL}
	}

	return &discordgo.MessageSend{Content: content, Embeds: []*discordgo.MessageEmbed{embed}}
}

func (s *Service) notifyFeedback(channelID, text string) {
	if channelID == "" {
		return
	}
	if _, err := s.messenger.Send(channelID, &discordgo.MessageSend{Content: text}); err != nil {
		s.logger.Warn("feedback notice failed", zap.String("channel", channelID), zap.Error(err))
	}
}
