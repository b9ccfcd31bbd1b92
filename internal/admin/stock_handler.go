package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront-bot/internal/catalog"
)

// GET /get-stock
func GetStockHandler(cat *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := cat.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao listar o estoque")
		}
		return c.JSON(items)
	}
}

// POST /add-fruit. The panel posts form-style values, so numbers may
// arrive as strings; unparseable values fall back to zero like the
// original panel did.
func AddFruitHandler(cat *catalog.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		item, err := cat.Add(catalog.AddParams{
			ID:       asString(body["id"]),
			Name:     asString(body["name"]),
			Emoji:    asString(body["emoji"]),
			Price:    asDecimal(body["price"]),
			Quantity: asInt(body["quantity"]),
			Max:      asInt(body["max"]),
		})
		if err != nil {
			if errors.Is(err, catalog.ErrValidation) {
				return fiber.NewError(fiber.StatusBadRequest, "id e name obrigatórios")
			}
			if errors.Is(err, catalog.ErrConflict) {
				return fiber.NewError(fiber.StatusBadRequest, "ID já existe")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao adicionar o item")
		}

		items, err := cat.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao listar o estoque")
		}
		return c.JSON(fiber.Map{"status": "success", "stock": items, "item": item})
	}
}

// POST /update-stock takes a batch of "<id>_quantity" / "<id>_price" keys. The
// batch is atomic; afterwards the price board is marked dirty.
func UpdateStockHandler(cat *catalog.Service, refresher *catalog.Refresher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		values := make(map[string]string, len(body))
		for k, v := range body {
			values[k] = asString(v)
		}

		if err := cat.BulkUpdate(values); err != nil {
			if errors.Is(err, catalog.ErrValidation) {
				return fiber.NewError(fiber.StatusBadRequest, "Valores inválidos no lote")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao atualizar o estoque.")
		}

		refresher.Trigger()

		items, err := cat.List()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Falha ao listar o estoque")
		}
		return c.JSON(fiber.Map{"status": "success", "stock": items})
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}
