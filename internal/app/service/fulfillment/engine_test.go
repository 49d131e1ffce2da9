package fulfillment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Plan{},
		&models.Store{},
		&models.Product{},
		&models.File{},
		&models.LicenseKey{},
		&models.Order{},
		&models.OrderItem{},
		&models.DownloadLink{},
		&models.AssignedLicenseKey{},
		&models.WebhookLog{},
	))
	return db
}

func newTestEngine(t *testing.T, db *gorm.DB) *Engine {
	t.Helper()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{}
	cfg.Download.PublicBaseURL = "http://localhost:8888"
	return NewEngine(cfg, db, log, storesvc.New(cfg, db, log), webhooklog.New(db, log))
}

func seedStore(t *testing.T, db *gorm.DB, plan *models.Plan) *models.Store {
	t.Helper()
	st := &models.Store{
		ID:          tool.GenerateUUIDV7(),
		Domain:      "acme.myshopify.com",
		AccessToken: "shpat_test",
		IsActive:    true,
	}
	if plan != nil {
		require.NoError(t, db.Create(plan).Error)
		st.CurrentPlanID = &plan.ID
	}
	require.NoError(t, db.Create(st).Error)
	return st
}

func seedDigitalProduct(t *testing.T, db *gorm.DB, storeID string, productID, variantID int64) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:                  tool.GenerateUUIDV7(),
		StoreID:             storeID,
		ExternalProductID:   productID,
		ExternalVariantID:   variantID,
		Name:                "E-Book",
		IsDigital:           true,
		MaxDownloadsPerLink: 5,
		LinkExpirationHours: 72,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestFulfillOrder_StoreNotFound(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)

	_, err := e.FulfillOrder(context.Background(), &OrderEvent{
		ShopDomain:      "missing.myshopify.com",
		ExternalOrderID: 1001,
		Email:           "buyer@example.com",
	})
	require.ErrorIs(t, err, ErrStoreNotFound)

	var logs []*models.WebhookLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, models.WebhookTypeOrderCreate, logs[0].WebhookType)
	require.Equal(t, models.WebhookLogStatusError, logs[0].Status)
	require.Nil(t, logs[0].StoreID)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount)
}

func TestFulfillOrder_DigitalItem(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)
	plan := &models.Plan{ID: tool.GenerateUUIDV7(), Name: "basic", PriceMonthly: 900, MaxOrdersPerMonth: lo.ToPtr(1), IsActive: true}
	st := seedStore(t, db, plan)
	product := seedDigitalProduct(t, db, st.ID, 11, 21)
	key := &models.LicenseKey{ID: tool.GenerateUUIDV7(), ProductID: product.ID, Key: "AAAA-BBBB"}
	require.NoError(t, db.Create(key).Error)

	res, err := e.FulfillOrder(context.Background(), &OrderEvent{
		ShopDomain:      st.Domain,
		ExternalOrderID: 1001,
		Email:           "buyer@example.com",
		LineItems:       []LineItem{{ExternalProductID: 11, ExternalVariantID: 21, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, models.WebhookLogStatusFulfilled, res.Status)
	require.Len(t, res.Items, 1)
	require.Equal(t, LineItemFulfilled, res.Items[0].Status)
	require.NotEmpty(t, res.Items[0].DownloadToken)
	require.Equal(t, "AAAA-BBBB", res.Items[0].LicenseKey)

	var order models.Order
	require.NoError(t, db.Where("external_order_id = ?", 1001).First(&order).Error)
	require.Equal(t, st.ID, order.StoreID)

	var link models.DownloadLink
	require.NoError(t, db.Where("token = ?", res.Items[0].DownloadToken).First(&link).Error)
	require.Zero(t, link.DownloadCount)
	require.WithinDuration(t, time.Now().Add(72*time.Hour), link.ExpiresAt, time.Minute)

	var assignedCount int64
	require.NoError(t, db.Model(&models.AssignedLicenseKey{}).Count(&assignedCount).Error)
	require.EqualValues(t, 1, assignedCount)

	var reloaded models.Store
	require.NoError(t, db.Where("id = ?", st.ID).First(&reloaded).Error)
	require.Equal(t, 1, reloaded.CurrentMonthOrderCount)

	var logs []*models.WebhookLog
	require.NoError(t, db.Order("created_at asc").Find(&logs).Error)
	require.Len(t, logs, 2)
	statuses := []models.WebhookLogStatus{logs[0].Status, logs[1].Status}
	require.Contains(t, statuses, models.WebhookLogStatusFulfilled)
	require.Contains(t, statuses, models.WebhookLogStatusSent)
}

func TestFulfillOrder_QuotaExceededCreatesNoOrder(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)
	plan := &models.Plan{ID: tool.GenerateUUIDV7(), Name: "basic", PriceMonthly: 900, MaxOrdersPerMonth: lo.ToPtr(1), IsActive: true}
	st := seedStore(t, db, plan)
	seedDigitalProduct(t, db, st.ID, 11, 21)

	eventA := &OrderEvent{ShopDomain: st.Domain, ExternalOrderID: 1, Email: "a@example.com",
		LineItems: []LineItem{{ExternalProductID: 11, ExternalVariantID: 21, Quantity: 1}}}
	_, err := e.FulfillOrder(context.Background(), eventA)
	require.NoError(t, err)

	eventB := &OrderEvent{ShopDomain: st.Domain, ExternalOrderID: 2, Email: "b@example.com",
		LineItems: []LineItem{{ExternalProductID: 11, ExternalVariantID: 21, Quantity: 1}}}
	_, err = e.FulfillOrder(context.Background(), eventB)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)

	var reloaded models.Store
	require.NoError(t, db.Where("id = ?", st.ID).First(&reloaded).Error)
	require.Equal(t, 1, reloaded.CurrentMonthOrderCount)

	var skipped models.WebhookLog
	require.NoError(t, db.Where("status = ?", models.WebhookLogStatusSkipped).First(&skipped).Error)
	require.Equal(t, st.ID, *skipped.StoreID)
}

func TestFulfillOrder_NoLicenseKeysStillFulfilled(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)
	st := seedStore(t, db, nil)
	seedDigitalProduct(t, db, st.ID, 11, 21)

	res, err := e.FulfillOrder(context.Background(), &OrderEvent{
		ShopDomain:      st.Domain,
		ExternalOrderID: 1001,
		Email:           "buyer@example.com",
		LineItems:       []LineItem{{ExternalProductID: 11, ExternalVariantID: 21, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Equal(t, models.WebhookLogStatusFulfilled, res.Status)
	require.Empty(t, res.Items[0].LicenseKey)

	var assignedCount int64
	require.NoError(t, db.Model(&models.AssignedLicenseKey{}).Count(&assignedCount).Error)
	require.Zero(t, assignedCount)

	var itemCount, linkCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.DownloadLink{}).Count(&linkCount).Error)
	require.EqualValues(t, 1, itemCount)
	require.EqualValues(t, 1, linkCount)
}

func TestFulfillOrder_SkipsUnknownAndPhysicalItems(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)
	st := seedStore(t, db, nil)
	physical := seedDigitalProduct(t, db, st.ID, 30, 40)
	require.NoError(t, db.Model(physical).Update("is_digital", false).Error)

	res, err := e.FulfillOrder(context.Background(), &OrderEvent{
		ShopDomain:      st.Domain,
		ExternalOrderID: 1001,
		Email:           "buyer@example.com",
		LineItems: []LineItem{
			{ExternalProductID: 99, ExternalVariantID: 99, Quantity: 1},
			{ExternalProductID: 30, ExternalVariantID: 40, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, models.WebhookLogStatusNoDigital, res.Status)
	require.Len(t, res.Items, 2)
	require.Equal(t, LineItemSkippedNotFound, res.Items[0].Status)
	require.Equal(t, LineItemSkippedPhysical, res.Items[1].Status)

	// The order counter still moves for an accepted order with no digital items.
	var reloaded models.Store
	require.NoError(t, db.Where("id = ?", st.ID).First(&reloaded).Error)
	require.Equal(t, 1, reloaded.CurrentMonthOrderCount)

	var itemCount int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	require.Zero(t, itemCount)
}

func TestClaimLicenseKey_NeverReassigned(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(t, db)
	st := seedStore(t, db, nil)
	product := seedDigitalProduct(t, db, st.ID, 11, 21)

	keyA := &models.LicenseKey{ID: tool.GenerateUUIDV7(), ProductID: product.ID, Key: "KEY-A"}
	keyB := &models.LicenseKey{ID: tool.GenerateUUIDV7(), ProductID: product.ID, Key: "KEY-B"}
	require.NoError(t, db.Create(keyA).Error)
	require.NoError(t, db.Create(keyB).Error)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		res, err := e.FulfillOrder(context.Background(), &OrderEvent{
			ShopDomain:      st.Domain,
			ExternalOrderID: int64(2000 + i),
			Email:           "buyer@example.com",
			LineItems:       []LineItem{{ExternalProductID: 11, ExternalVariantID: 21, Quantity: 1}},
		})
		require.NoError(t, err)
		if res.Items[0].LicenseKey != "" {
			require.False(t, seen[res.Items[0].LicenseKey], "license key assigned twice")
			seen[res.Items[0].LicenseKey] = true
		}
	}
	// Lowest-id key goes first, pool exhausts after two orders.
	require.Equal(t, map[string]bool{"KEY-A": true, "KEY-B": true}, seen)
}
