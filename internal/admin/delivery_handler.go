package admin

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/config"
	"storefront-bot/internal/delivery"
)

// POST /deliver takes a multipart form {mention, itemId, quantity, note,
// photo?}. Panel deliveries log the record and post the embed but do not
// touch stock.
func DeliverHandler(del *delivery.Service, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID := strings.TrimSpace(c.FormValue("itemId"))
		if itemID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "itemId requerido")
		}

		qty, err := strconv.Atoi(c.FormValue("quantity"))
		if err != nil || qty <= 0 {
			qty = 1
		}

		var photoURL string
		if file, err := c.FormFile("photo"); err == nil && file != nil {
			name := uuid.NewString() + filepath.Ext(file.Filename)
			if err := c.SaveFile(file, filepath.Join(cfg.UploadPath, name)); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Falha ao salvar a foto")
			}
			photoURL = cfg.BaseURL + "/uploads/" + name
		}

		record, err := del.Create(delivery.CreateParams{
			Mention:          c.FormValue("mention"),
			ItemID:           itemID,
			Quantity:         qty,
			Note:             c.FormValue("note"),
			PhotoURL:         photoURL,
			IncludeUnitPrice: true,
		})
		if err != nil {
			if errors.Is(err, delivery.ErrChannelNotConfigured) {
				return fiber.NewError(fiber.StatusBadRequest, "Canal de entregas não configurado no painel.")
			}
			if errors.Is(err, catalog.ErrNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "item não encontrado")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao registrar a entrega")
		}

		return c.JSON(fiber.Map{"status": "success", "delivery": record})
	}
}

// GET /get-deliveries, newest first.
func GetDeliveriesHandler(del *delivery.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := del.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao listar as entregas")
		}
		return c.JSON(records)
	}
}
