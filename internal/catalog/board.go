package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront-bot/internal/models"
)

// BuyButtonID is the custom id of the buy button on the price board.
const BuyButtonID = "buy_item_button"

const (
	boardTitle  = "🧠 DOLLYA STORE | TABELA DE PREÇOS"
	boardFooter = "🛒 DOLLYA STORE"
	boardColor  = 16753920
	outOfStock  = "ESGOTADO"
)

// BoardEmbed renders the price board: one inline field per item, sold-out
// items marked instead of showing a zero.
func BoardEmbed(items []models.StockItem) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(items))
	for _, item := range items {
		qty := outOfStock
		if item.Quantity > 0 {
			qty = strconv.Itoa(item.Quantity)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   strings.TrimSpace(item.Emoji + " " + item.Name),
			Value:  fmt.Sprintf("**Preço:** R$%s\n**Estoque:** %s", item.Price.StringFixed(2), qty),
			Inline: true,
		})
	}
	return &discordgo.MessageEmbed{
		Title:  boardTitle,
		Color:  boardColor,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{Text: boardFooter},
	}
}

// BoardComponents returns the buy button row shown under the board.
func BoardComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "🛒 Comprar",
					Style:    discordgo.SuccessButton,
					CustomID: BuyButtonID,
				},
			},
		},
	}
}

var (
	boardQtyPattern   = regexp.MustCompile(`(?i)Estoque:\s*([0-9]+|` + outOfStock + `)`)
	boardPricePattern = regexp.MustCompile(`(?i)Preço:\s*R\$([\d,.]+)`)
)

// ReconcileFromBoard overwrites local quantities and prices from a
// previously posted board embed. Fields are matched to items by name
// containment; items absent from the embed are left untouched, so this
// never deletes anything.
func (s *Service) ReconcileFromBoard(embed *discordgo.MessageEmbed) error {
	if embed == nil || len(embed.Fields) == 0 {
		return nil
	}

	items, err := s.List()
	if err != nil {
		return err
	}

	for _, field := range embed.Fields {
		var matched *models.StockItem
		for i := range items {
			if strings.Contains(field.Name, items[i].Name) {
				matched = &items[i]
				break
			}
		}
		if matched == nil {
			continue
		}

		cleaned := strings.ReplaceAll(field.Value, "**", "")
		updates := map[string]any{}

		if m := boardQtyPattern.FindStringSubmatch(cleaned); m != nil {
			if strings.EqualFold(m[1], outOfStock) {
				updates["quantity"] = 0
			} else if qty, err := strconv.Atoi(m[1]); err == nil {
				updates["quantity"] = qty
			}
		}
		if m := boardPricePattern.FindStringSubmatch(cleaned); m != nil {
			if price, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ".")); err == nil {
				updates["price"] = price
			}
		}

		if len(updates) == 0 {
			continue
		}
		if err := s.db.Model(&models.StockItem{}).Where("id = ?", matched.ID).Updates(updates).Error; err != nil {
			return err
		}
		s.logger.Info("reconciled item from board message",
			zap.String("item", matched.ID), zap.Any("updates", updates))
	}
	return nil
}
