package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/app/service/fulfillment"
	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Plan{}, &models.Store{}, &models.Product{}, &models.File{},
		&models.LicenseKey{}, &models.Order{}, &models.OrderItem{},
		&models.DownloadLink{}, &models.AssignedLicenseKey{}, &models.WebhookLog{},
	))

	log := zap.NewNop().Sugar()
	cfg := &config.Config{}
	cfg.Download.PublicBaseURL = "http://localhost:8888"
	engine := fulfillment.NewEngine(cfg, db, log, storesvc.New(cfg, db, log), webhooklog.New(db, log))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	RegisterWebhookRoutes(api, engine, log)
	return r, db
}

func postWebhook(r *gin.Engine, body, headerDomain string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/shopify/orders/create/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if headerDomain != "" {
		req.Header.Set("X-Shopify-Shop-Domain", headerDomain)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestApiOrderCreateWebhook(t *testing.T) {
	r, db := newWebhookRouter(t)

	st := &models.Store{ID: tool.GenerateUUIDV7(), Domain: "acme.myshopify.com", AccessToken: "tok", IsActive: true}
	require.NoError(t, db.Create(st).Error)
	require.NoError(t, db.Create(&models.Product{
		ID: tool.GenerateUUIDV7(), StoreID: st.ID,
		ExternalProductID: 11, ExternalVariantID: 21,
		Name: "E-Book", IsDigital: true,
		MaxDownloadsPerLink: 5, LinkExpirationHours: 72,
	}).Error)

	body := `{"id": 1001, "email": "buyer@example.com", "line_items": [{"product_id": 11, "variant_id": 21, "quantity": 1}]}`

	// The transport header identifies the store when the payload lacks a domain.
	w := postWebhook(r, body, st.Domain)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"fulfilled"`)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)

	w = postWebhook(r, body, "unknown.myshopify.com")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Store not found.")

	w = postWebhook(r, "{not json", st.Domain)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiOrderCreateWebhook_QuotaForbidden(t *testing.T) {
	r, db := newWebhookRouter(t)

	plan := &models.Plan{ID: tool.GenerateUUIDV7(), Name: "basic", MaxOrdersPerMonth: lo.ToPtr(0), IsActive: true}
	require.NoError(t, db.Create(plan).Error)
	st := &models.Store{ID: tool.GenerateUUIDV7(), Domain: "acme.myshopify.com", AccessToken: "tok", IsActive: true, CurrentPlanID: &plan.ID}
	require.NoError(t, db.Create(st).Error)

	w := postWebhook(r, `{"id": 1, "email": "a@example.com", "line_items": []}`, st.Domain)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Plan order limit exceeded.")
}
