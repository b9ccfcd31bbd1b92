package admin

import (
	"github.com/gofiber/fiber/v2"

	"storefront-bot/internal/settings"
)

type SaveConfigRequest struct {
	MainChannelID     *string `json:"mainChannelId"`
	MainMessageID     *string `json:"mainMessageId"`
	DeliveryChannelID *string `json:"deliveryChannelId"`
	ClientRoleID      *string `json:"clientRoleId"`
	GuildID           *string `json:"guildId"`
}

// GET /get-config
func GetConfigHandler(set *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(set.Snapshot())
	}
}

// POST /save-config applies a partial merge; persisting is a no-op when the
// configuration is managed by the environment.
func SaveConfigHandler(set *settings.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveConfigRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if _, err := set.Apply(settings.Update{
			MainChannelID:     body.MainChannelID,
			MainMessageID:     body.MainMessageID,
			DeliveryChannelID: body.DeliveryChannelID,
			ClientRoleID:      body.ClientRoleID,
			GuildID:           body.GuildID,
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao salvar configurações")
		}

		return c.JSON(fiber.Map{"status": "success", "message": "Configurações salvas."})
	}
}
