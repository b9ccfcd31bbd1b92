package admin

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/config"
	"storefront-bot/internal/delivery"
	"storefront-bot/internal/models"
	"storefront-bot/internal/settings"
)

type stubMessenger struct{}

func (stubMessenger) Send(channelID string, _ *discordgo.MessageSend) (*discordgo.Message, error) {
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (stubMessenger) Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return &discordgo.Message{ID: edit.ID}, nil
}

func (stubMessenger) Fetch(_, messageID string) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID}, nil
}

type panelFixture struct {
	app *fiber.App
	db  *gorm.DB
	cat *catalog.Service
	set *settings.Service
}

func newPanelFixture(t *testing.T) *panelFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockItem{}, &models.DeliveryRecord{}, &models.Configuration{}))

	logger := zap.NewNop()
	cat := catalog.NewService(db, logger)
	set, err := settings.Load(db, &config.Config{}, logger)
	require.NoError(t, err)
	del := delivery.NewService(db, cat, set, stubMessenger{}, logger)
	refresher := catalog.NewRefresher(cat, set, stubMessenger{}, logger)

	app := fiber.New()
	app.Get("/get-config", GetConfigHandler(set))
	app.Post("/save-config", SaveConfigHandler(set))
	app.Get("/get-stock", GetStockHandler(cat))
	app.Post("/add-fruit", AddFruitHandler(cat))
	app.Post("/update-stock", UpdateStockHandler(cat, refresher))
	app.Post("/deliver", DeliverHandler(del, &config.Config{UploadPath: t.TempDir()}))
	app.Get("/get-deliveries", GetDeliveriesHandler(del))

	return &panelFixture{app: app, db: db, cat: cat, set: set}
}

func (f *panelFixture) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (f *panelFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestSaveAndGetConfig(t *testing.T) {
	f := newPanelFixture(t)

	resp := f.postJSON(t, "/save-config", fiber.Map{
		"mainChannelId":     "chan-1",
		"deliveryChannelId": "chan-2",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cfg models.Configuration
	decodeJSON(t, f.get(t, "/get-config"), &cfg)
	assert.Equal(t, "chan-1", cfg.MainChannelID)
	assert.Equal(t, "chan-2", cfg.DeliveryChannelID)

	// A partial update leaves the other fields alone.
	resp = f.postJSON(t, "/save-config", fiber.Map{"clientRoleId": "role-1"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeJSON(t, f.get(t, "/get-config"), &cfg)
	assert.Equal(t, "chan-1", cfg.MainChannelID)
	assert.Equal(t, "role-1", cfg.ClientRoleID)
}

func TestAddFruitAndGetStock(t *testing.T) {
	f := newPanelFixture(t)

	resp := f.postJSON(t, "/add-fruit", fiber.Map{
		"id": "mango", "name": "MANGO", "emoji": "🥭",
		"price": "0.70", "quantity": 12,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []models.StockItem
	decodeJSON(t, f.get(t, "/get-stock"), &items)
	require.Len(t, items, 1)
	assert.Equal(t, "MANGO", items[0].ID)
	assert.Equal(t, 12, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("0.70")))

	// Same id again is rejected.
	resp = f.postJSON(t, "/add-fruit", fiber.Map{"id": "mango", "name": "MANGO"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAddFruitRequiresIDAndName(t *testing.T) {
	f := newPanelFixture(t)

	resp := f.postJSON(t, "/add-fruit", fiber.Map{"emoji": "🥭"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateStock(t *testing.T) {
	f := newPanelFixture(t)
	_, err := f.cat.Add(catalog.AddParams{ID: "MANGO", Name: "MANGO", Quantity: 10, Price: decimal.NewFromFloat(0.7)})
	require.NoError(t, err)

	resp := f.postJSON(t, "/update-stock", fiber.Map{
		"MANGO_quantity": "25",
		"MANGO_price":    "1.50",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	item, err := f.cat.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 25, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("1.50")))
}

func TestUpdateStockRejectsBadValues(t *testing.T) {
	f := newPanelFixture(t)
	_, err := f.cat.Add(catalog.AddParams{ID: "MANGO", Name: "MANGO", Quantity: 10, Price: decimal.NewFromFloat(0.7)})
	require.NoError(t, err)

	resp := f.postJSON(t, "/update-stock", fiber.Map{"MANGO_quantity": "muitos"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	item, err := f.cat.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func deliverForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestDeliver(t *testing.T) {
	f := newPanelFixture(t)
	_, err := f.cat.Add(catalog.AddParams{ID: "MANGO", Name: "MANGO", Quantity: 10, Price: decimal.NewFromFloat(0.7)})
	require.NoError(t, err)
	_, err = f.set.Apply(settings.Update{DeliveryChannelID: strptr("chan-2")})
	require.NoError(t, err)

	body, contentType := deliverForm(t, map[string]string{
		"mention": "cliente#1", "itemId": "MANGO", "quantity": "2", "note": "entregue",
	})
	req := httptest.NewRequest(http.MethodPost, "/deliver", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var records []models.DeliveryRecord
	decodeJSON(t, f.get(t, "/get-deliveries"), &records)
	require.Len(t, records, 1)
	assert.Equal(t, "MANGO", records[0].ItemID)
	assert.Equal(t, 2, records[0].Quantity)

	// Panel deliveries never touch the stock.
	item, err := f.cat.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestDeliverValidation(t *testing.T) {
	f := newPanelFixture(t)
	_, err := f.set.Apply(settings.Update{DeliveryChannelID: strptr("chan-2")})
	require.NoError(t, err)

	// Missing itemId.
	body, contentType := deliverForm(t, map[string]string{"mention": "cliente#1"})
	req := httptest.NewRequest(http.MethodPost, "/deliver", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown item.
	body, contentType = deliverForm(t, map[string]string{"itemId": "GHOST"})
	req = httptest.NewRequest(http.MethodPost, "/deliver", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeliverWithoutChannel(t *testing.T) {
	f := newPanelFixture(t)
	_, err := f.cat.Add(catalog.AddParams{ID: "MANGO", Name: "MANGO", Quantity: 10, Price: decimal.NewFromFloat(0.7)})
	require.NoError(t, err)

	body, contentType := deliverForm(t, map[string]string{"itemId": "MANGO"})
	req := httptest.NewRequest(http.MethodPost, "/deliver", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func strptr(s string) *string { return &s }
