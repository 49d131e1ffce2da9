package download

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

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/internal/platform/storage"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

type fixture struct {
	svc     *Service
	db      *gorm.DB
	product *models.Product
	link    *models.DownloadLink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
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
		MaxDownloadsPerLink: 2, LinkExpirationHours: 72,
	}
	require.NoError(t, db.Create(product).Error)
	require.NoError(t, db.Create(&models.File{
		ID: tool.GenerateUUIDV7(), ProductID: product.ID,
		FileName: "book.pdf", FilePath: "files/book.pdf", FileSizeBytes: 1024,
		DisplayName: lo.ToPtr("The Book"),
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
	return &fixture{
		svc:     New(db, zap.NewNop().Sugar(), storage.NewStubSigner(cfg)),
		db:      db,
		product: product,
		link:    link,
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Resolve(context.Background(), "no-such-token")
	require.ErrorIs(t, err, ErrLinkNotFound)
}

func TestResolve_ExpiredBeatsLimit(t *testing.T) {
	fx := newFixture(t)
	// Expired and already at the limit: expiry wins.
	require.NoError(t, fx.db.Model(fx.link).Updates(map[string]any{
		"expires_at":     time.Now().Add(-time.Minute),
		"download_count": 2,
	}).Error)

	_, err := fx.svc.Resolve(context.Background(), fx.link.Token)
	require.ErrorIs(t, err, ErrLinkExpired)
}

func TestResolve_CountsAndEnforcesLimit(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		res, err := fx.svc.Resolve(ctx, fx.link.Token)
		require.NoError(t, err)
		require.Len(t, res.Files, 1)
		require.Equal(t, "book.pdf", res.Files[0].FileName)
		require.Equal(t, "The Book", res.Files[0].DisplayName)
		require.Contains(t, res.Files[0].DownloadURL, "https://cdn.example.com/")
		require.WithinDuration(t, fx.link.ExpiresAt, res.ExpiresAt, time.Second)

		var reloaded models.DownloadLink
		require.NoError(t, fx.db.Where("id = ?", fx.link.ID).First(&reloaded).Error)
		require.Equal(t, i, reloaded.DownloadCount)
	}

	_, err := fx.svc.Resolve(ctx, fx.link.Token)
	require.ErrorIs(t, err, ErrLimitReached)

	var reloaded models.DownloadLink
	require.NoError(t, fx.db.Where("id = ?", fx.link.ID).First(&reloaded).Error)
	require.Equal(t, 2, reloaded.DownloadCount)
}

func TestResolve_LimitReadLiveFromProduct(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	require.NoError(t, fx.db.Model(fx.link).Update("download_count", 2).Error)

	_, err := fx.svc.Resolve(ctx, fx.link.Token)
	require.ErrorIs(t, err, ErrLimitReached)

	// Raising the product cap revives exhausted links.
	require.NoError(t, fx.db.Model(fx.product).Update("max_downloads_per_link", 5).Error)
	res, err := fx.svc.Resolve(ctx, fx.link.Token)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
}
