package delivery

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-bot/internal/catalog"
	"storefront-bot/internal/config"
	"storefront-bot/internal/models"
	"storefront-bot/internal/settings"
)

type fakeMessenger struct {
	sent    []sentMessage
	sendErr error
}

type sentMessage struct {
	channelID string
	msg       *discordgo.MessageSend
}

func (f *fakeMessenger) Send(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeMessenger) Edit(edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return &discordgo.Message{ID: edit.ID}, nil
}

func (f *fakeMessenger) Fetch(channelID, messageID string) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID}, nil
}

type fixture struct {
	db        *gorm.DB
	service   *Service
	catalog   *catalog.Service
	messenger *fakeMessenger
}

func newFixture(t *testing.T, envCfg *config.Config) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StockItem{}, &models.DeliveryRecord{}, &models.Configuration{}))

	cat := catalog.NewService(db, zap.NewNop())
	_, err = cat.Add(catalog.AddParams{ID: "MANGO", Name: "MANGO", Emoji: "🥭", Quantity: 10, Price: decimal.NewFromFloat(0.7)})
	require.NoError(t, err)

	set, err := settings.Load(db, envCfg, zap.NewNop())
	require.NoError(t, err)

	messenger := &fakeMessenger{}
	return &fixture{
		db:        db,
		service:   NewService(db, cat, set, messenger, zap.NewNop()),
		catalog:   cat,
		messenger: messenger,
	}
}

func configuredEnv() *config.Config {
	return &config.Config{
		MainChannelID:     "main-chan",
		DeliveryChannelID: "delivery-chan",
		ClientRoleID:      "role-9",
	}
}

func TestCreateDecrementsAndRecords(t *testing.T) {
	f := newFixture(t, configuredEnv())

	record, err := f.service.Create(CreateParams{
		Mention:        "buyer-1",
		ItemID:         "MANGO",
		Quantity:       3,
		Note:           "entregue em mãos",
		DecrementStock: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "MANGO", record.ItemID)
	assert.Equal(t, "MANGO", record.ItemName)
	assert.Equal(t, 3, record.Quantity)
	assert.True(t, record.MessageSent)
	assert.Equal(t, 200, record.MessageStatus)

	item, err := f.catalog.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)

	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, "delivery-chan", f.messenger.sent[0].channelID)
	assert.Equal(t, "<@&role-9>", f.messenger.sent[0].msg.Content)
}

func TestCreateRecordsEvenWhenSendFails(t *testing.T) {
	f := newFixture(t, configuredEnv())
	f.messenger.sendErr = assert.AnError

	record, err := f.service.Create(CreateParams{
		ItemID:         "MANGO",
		Quantity:       2,
		DecrementStock: true,
	})
	require.NoError(t, err)
	assert.False(t, record.MessageSent)
	assert.Equal(t, 500, record.MessageStatus)

	var count int64
	require.NoError(t, f.db.Model(&models.DeliveryRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	item, err := f.catalog.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 8, item.Quantity)
}

func TestPanelPathDoesNotDecrement(t *testing.T) {
	f := newFixture(t, configuredEnv())

	record, err := f.service.Create(CreateParams{
		Mention:          "123456789012345678",
		ItemID:           "MANGO",
		Quantity:         4,
		IncludeUnitPrice: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, record.Quantity)

	item, err := f.catalog.Get("MANGO")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)

	// Numeric ids are turned into real mentions in the message content.
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, "<@123456789012345678>", f.messenger.sent[0].msg.Content)

	embed := f.messenger.sent[0].msg.Embeds[0]
	var hasUnitPrice bool
	for _, field := range embed.Fields {
		if field.Name == "Preço Unit." {
			hasUnitPrice = true
			assert.Equal(t, "R$0.70", field.Value)
		}
	}
	assert.True(t, hasUnitPrice)
}

func TestQuantityDefaultsToOne(t *testing.T) {
	f := newFixture(t, configuredEnv())

	record, err := f.service.Create(CreateParams{ItemID: "MANGO"})
	require.NoError(t, err)
	assert.Equal(t, 1, record.Quantity)
}

func TestCreateWithoutDeliveryChannel(t *testing.T) {
	f := newFixture(t, &config.Config{}) // nothing configured

	_, err := f.service.Create(CreateParams{
		ItemID:            "MANGO",
		FeedbackChannelID: "thread-1",
	})
	assert.ErrorIs(t, err, ErrChannelNotConfigured)

	// The fallback channel got the error notice and no record was written.
	require.Len(t, f.messenger.sent, 1)
	assert.Equal(t, "thread-1", f.messenger.sent[0].channelID)

	var count int64
	require.NoError(t, f.db.Model(&models.DeliveryRecord{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateWithUnknownItem(t *testing.T) {
	f := newFixture(t, configuredEnv())

	_, err := f.service.Create(CreateParams{ItemID: "GHOST"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t, configuredEnv())

	for i := 0; i < 3; i++ {
		_, err := f.service.Create(CreateParams{ItemID: "MANGO"})
		require.NoError(t, err)
	}

	records, err := f.service.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.GreaterOrEqual(t, records[0].ID, records[1].ID)
	assert.GreaterOrEqual(t, records[1].ID, records[2].ID)
}
