package main

import (
	"context"
	"errors"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"storefront-bot/internal/admin"
	"storefront-bot/internal/auth"
	"storefront-bot/internal/bot"
	"storefront-bot/internal/catalog"
	"storefront-bot/internal/config"
	"storefront-bot/internal/database"
	"storefront-bot/internal/delivery"
	"storefront-bot/internal/discord"
	"storefront-bot/internal/settings"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := database.Init(cfg, logger)

	set, err := settings.Load(db, cfg, logger)
	if err != nil {
		logger.Fatal("settings load failed", zap.Error(err))
	}

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		logger.Fatal("session setup failed", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	if err := session.Open(); err != nil {
		logger.Fatal("chat platform login failed", zap.Error(err))
	}
	defer session.Close()
	logger.Info("bot logged in", zap.String("user", session.State.User.Username))

	if err := database.Seed(db, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}

	messenger := discord.NewSession(session)
	cat := catalog.NewService(db, logger)

	// Startup-only reconciliation: pull quantities/prices back from the
	// last known board message, when one is configured.
	if snap := set.Snapshot(); snap.MainChannelID != "" && snap.MainMessageID != "" {
		msg, err := messenger.Fetch(snap.MainChannelID, snap.MainMessageID)
		if err != nil {
			logger.Warn("board message fetch failed", zap.Error(err))
		} else if len(msg.Embeds) > 0 {
			if err := cat.ReconcileFromBoard(msg.Embeds[0]); err != nil {
				logger.Warn("board reconciliation failed", zap.Error(err))
			}
		}
	}

	refresher := catalog.NewRefresher(cat, set, messenger, logger)
	go refresher.Run(context.Background())

	del := delivery.NewService(db, cat, set, messenger, logger)
	storeBot := bot.New(session, session, cat, del, logger)
	storeBot.Register(session)

	if err := os.MkdirAll(cfg.UploadPath, 0o755); err != nil {
		logger.Fatal("upload directory setup failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"status": "error", "message": fiberErr.Message,
				})
			}
			logger.Error("unexpected handler error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "error", "message": "Erro inesperado no servidor",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Static("/public", cfg.PublicPath)
	app.Static("/uploads", cfg.UploadPath)
	app.Static("/", cfg.PublicPath)

	api := app.Group("")
	if cfg.JWTSecret != "" {
		app.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
		app.Post("/auth/login", auth.LoginHandler(db, cfg.JWTSecret))
		api = app.Group("", auth.JWTMiddleware(cfg.JWTSecret))
	}

	api.Get("/get-config", admin.GetConfigHandler(set))
	api.Post("/save-config", admin.SaveConfigHandler(set))
	api.Get("/get-stock", admin.GetStockHandler(cat))
	api.Post("/add-fruit", admin.AddFruitHandler(cat))
	api.Post("/update-stock", admin.UpdateStockHandler(cat, refresher))
	api.Post("/deliver", admin.DeliverHandler(del, cfg))
	api.Get("/get-deliveries", admin.GetDeliveriesHandler(del))

	logger.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
