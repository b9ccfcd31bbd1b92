package catalog

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"storefront-bot/internal/discord"
	"storefront-bot/internal/settings"
)

// Refresher keeps the price board message in sync with the catalog. Stock
// updates only mark the board dirty; a single goroutine performs the edit
// with retries, so a slow or failing chat platform never blocks the admin
// request path.
type Refresher struct {
	catalog   *Service
	settings  *settings.Service
	messenger discord.Messenger
	logger    *zap.Logger

	dirty    chan struct{}
	attempts int
	backoff  time.Duration
}

func NewRefresher(catalog *Service, settings *settings.Service, messenger discord.Messenger, logger *zap.Logger) *Refresher {
	return &Refresher{
		catalog:   catalog,
		settings:  settings,
		messenger: messenger,
		logger:    logger,
		dirty:     make(chan struct{}, 1),
		attempts:  3,
		backoff:   500 * time.Millisecond,
	}
}

// Trigger marks the board dirty. Bursts coalesce into a single refresh.
func (r *Refresher) Trigger() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

// Run consumes dirty marks until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.dirty:
			if err := r.refreshWithRetry(ctx); err != nil {
				r.logger.Error("price board refresh gave up", zap.Error(err))
			}
		}
	}
}

func (r *Refresher) refreshWithRetry(ctx context.Context) error {
	var err error
	delay := r.backoff
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = r.RefreshOnce(); err == nil {
			return nil
		}
		r.logger.Warn("price board refresh failed",
			zap.Int("attempt", attempt), zap.Error(err))
		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// RefreshOnce performs a single refresh attempt: edit the stored message,
// or send a new one when no message is stored or the stored one is stale.
// A stale message id (deleted, or authored by someone else) is cleared so
// the next attempt starts clean.
func (r *Refresher) RefreshOnce() error {
	cfg := r.settings.Snapshot()
	if cfg.MainChannelID == "" {
		r.logger.Info("main channel not configured, skipping board refresh")
		return nil
	}

	items, err := r.catalog.List()
	if err != nil {
		return err
	}
	embeds := []*discordgo.MessageEmbed{BoardEmbed(items)}
	components := BoardComponents()

	if cfg.MainMessageID != "" {
		_, err := r.messenger.Edit(&discordgo.MessageEdit{
			Channel:    cfg.MainChannelID,
			ID:         cfg.MainMessageID,
			Embeds:     &embeds,
			Components: &components,
		})
		if err == nil {
			return nil
		}
		if !discord.IsStaleMessage(err) {
			return err
		}
		r.logger.Warn("stored board message is stale, sending a new one",
			zap.String("message_id", cfg.MainMessageID), zap.Error(err))
		empty := ""
		if _, err := r.settings.Apply(settings.Update{MainMessageID: &empty}); err != nil {
			return err
		}
	}

	msg, err := r.messenger.Send(cfg.MainChannelID, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: components,
	})
	if err != nil {
		return err
	}
	if _, err := r.settings.Apply(settings.Update{MainMessageID: &msg.ID}); err != nil {
		return err
	}
	r.logger.Info("price board message created", zap.String("message_id", msg.ID))
	return nil
}
