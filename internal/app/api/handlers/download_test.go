package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	dlsvc "github.com/fatflowers/shopdrop/internal/app/service/download"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/internal/platform/storage"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

func newDownloadRouter(t *testing.T) (*gin.Engine, *gorm.DB, *models.DownloadLink) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Store{}, &models.Product{}, &models.File{},
		&models.Order{}, &models.OrderItem{}, &models.DownloadLink{},
	))

	st := &models.Store{ID: tool.GenerateUUIDV7(), Domain: "acme.myshopify.com", AccessToken: "tok", IsActive: true}
	require.NoError(t, db.Create(st).Error)
	product := &models.Product{
		ID: tool.GenerateUUIDV7(), StoreID: st.ID,
		ExternalProductID: 11, ExternalVariantID: 21,
		Name: "E-Book", IsDigital: true,
		MaxDownloadsPerLink: 1, LinkExpirationHours: 72,
	}
	require.NoError(t, db.Create(product).Error)
	require.NoError(t, db.Create(&models.File{
		ID: tool.GenerateUUIDV7(), ProductID: product.ID,
		FileName: "book.pdf", FilePath: "files/book.pdf", FileSizeBytes: 1024,
	}).Error)
	order := &models.Order{ID: tool.GenerateUUIDV7(), StoreID: st.ID, ExternalOrderID: 1001, Email: "buyer@example.com"}
	require.NoError(t, db.Create(order).Error)
	orderItem := &models.OrderItem{ID: tool.GenerateUUIDV7(), OrderID: order.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, db.Create(orderItem).Error)
	link := &models.DownloadLink{
		ID: tool.GenerateUUIDV7(), OrderItemID: orderItem.ID,
		Token:     tool.GenerateDownloadToken(),
		URL:       "http://localhost:8888/api/v1/download/x/",
		ExpiresAt: time.Now().Add(72 * time.Hour),
	}
	require.NoError(t, db.Create(link).Error)

	cfg := &config.Config{}
	cfg.Download.StorageBaseURL = "https://cdn.example.com"
	svc := dlsvc.New(db, zap.NewNop().Sugar(), storage.NewStubSigner(cfg))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	RegisterDownloadRoutes(api, svc)
	return r, db, link
}

func getDownload(r *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/download/"+token+"/", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestApiResolveDownload_StatusMapping(t *testing.T) {
	r, db, link := newDownloadRouter(t)

	w := getDownload(r, "unknown-token")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired link.")

	w = getDownload(r, link.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "book.pdf")
	require.Contains(t, w.Body.String(), "https://cdn.example.com/")

	// Cap of 1 is spent; the next call is forbidden.
	w = getDownload(r, link.Token)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Download limit reached.")

	require.NoError(t, db.Model(link).Update("expires_at", time.Now().Add(-time.Minute)).Error)
	w = getDownload(r, link.Token)
	require.Equal(t, http.StatusGone, w.Code)
	require.Contains(t, w.Body.String(), "This download link has expired.")
}
