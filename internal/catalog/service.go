package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-bot/internal/models"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeID turns a free-form id into the stable slug form: uppercase
// with whitespace collapsed to underscores.
func NormalizeID(id string) string {
	return whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(id)), "_")
}

// Service implements the stock catalog operations backing both the admin
// panel and the bot.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// List returns every item ordered by name ascending.
func (s *Service) List() ([]models.StockItem, error) {
	var items []models.StockItem
	if err := s.db.Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListAvailable returns items with quantity > 0, name ascending. Used to
// build the buy menu.
func (s *Service) ListAvailable() ([]models.StockItem, error) {
	var items []models.StockItem
	if err := s.db.Where("quantity > 0").Order("name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get looks an item up by its exact id.
func (s *Service) Get(id string) (*models.StockItem, error) {
	var item models.StockItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

type AddParams struct {
	ID       string
	Name     string
	Emoji    string
	Price    decimal.Decimal
	Quantity int
	Max      int
}

// Add creates a new item. The id is normalized first and a duplicate
// normalized id is a conflict. Max defaults to the quantity, or 100 when
// the quantity is absent too.
func (s *Service) Add(p AddParams) (*models.StockItem, error) {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("%w: id and name are required", ErrValidation)
	}

	id := NormalizeID(p.ID)

	max := p.Max
	if max <= 0 {
		max = p.Quantity
		if max <= 0 {
			max = 100
		}
	}

	item := models.StockItem{
		ID:       id,
		Name:     strings.ToUpper(strings.TrimSpace(p.Name)),
		Emoji:    p.Emoji,
		Price:    p.Price,
		Quantity: p.Quantity,
		Max:      max,
	}
	// The primary key arbitrates concurrent adds of the same id.
	if err := s.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, id)
		}
		return nil, err
	}
	return &item, nil
}

// BulkUpdate applies a batch of "<id>_quantity" / "<id>_price" values in
// a single transaction. Keys for unknown items are ignored; a value that
// fails to parse rejects the whole batch so readers never observe a
// partial price/quantity skew.
func (s *Service) BulkUpdate(values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.StockItem
		if err := tx.Select("id").Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			updates := map[string]any{}

			if raw, ok := values[item.ID+"_quantity"]; ok {
				qty, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil {
					return fmt.Errorf("%w: quantity for %s: %q", ErrValidation, item.ID, raw)
				}
				updates["quantity"] = qty
			}
			if raw, ok := values[item.ID+"_price"]; ok {
				price, err := decimal.NewFromString(strings.TrimSpace(raw))
				if err != nil {
					return fmt.Errorf("%w: price for %s: %q", ErrValidation, item.ID, raw)
				}
				updates["price"] = price
			}

			if len(updates) == 0 {
				continue
			}
			if err := tx.Model(&models.StockItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Decrement subtracts qty from an item's stock. There is no floor check:
// oversized deliveries drive the quantity negative.
func (s *Service) Decrement(id string, qty int) error {
	return s.db.Model(&models.StockItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty)).Error
}
