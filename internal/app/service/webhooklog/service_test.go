package webhooklog

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/tool"
	"github.com/fatflowers/shopdrop/pkg/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WebhookLog{}))
	return New(db, zap.NewNop().Sugar()), db
}

func TestSave_FillsIDAndPersists(t *testing.T) {
	svc, db := newTestService(t)

	row := &models.WebhookLog{
		WebhookType: models.WebhookTypeOrderCreate,
		Status:      models.WebhookLogStatusFulfilled,
		Message:     "Order processed and fulfilled.",
	}
	svc.Save(context.Background(), row)
	require.NotEmpty(t, row.ID)

	var count int64
	require.NoError(t, db.Model(&models.WebhookLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Nil rows are ignored, not a panic.
	svc.Save(context.Background(), nil)
}

func TestScan_FiltersAndPagination(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	storeA := tool.GenerateUUIDV7()
	storeB := tool.GenerateUUIDV7()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.WebhookLog{
			ID:          tool.GenerateUUIDV7(),
			StoreID:     lo.ToPtr(storeA),
			WebhookType: models.WebhookTypeOrderCreate,
			Status:      models.WebhookLogStatusFulfilled,
		}).Error)
	}
	require.NoError(t, db.Create(&models.WebhookLog{
		ID:          tool.GenerateUUIDV7(),
		StoreID:     lo.ToPtr(storeB),
		WebhookType: models.WebhookTypeEmail,
		Status:      models.WebhookLogStatusSent,
	}).Error)

	res, err := svc.Scan(ctx, &ScanRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 4, res.Total)
	require.Len(t, res.Items, 4)

	res, err = svc.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{
			{Field: "store_id", Operator: types.CommonFilterOperatorEq, Values: []any{storeA}},
			{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{string(models.WebhookLogStatusFulfilled)}},
		},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, res.Total)

	res, err = svc.Scan(ctx, &ScanRequest{From: 2, Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 4, res.Total)
	require.Len(t, res.Items, 2)

	res, err = svc.Scan(ctx, &ScanRequest{Size: 1, SortBy: "id", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	first := res.Items[0].ID
	res, err = svc.Scan(ctx, &ScanRequest{Size: 1, SortBy: "id", SortOrder: "desc"})
	require.NoError(t, err)
	require.NotEqual(t, first, res.Items[0].ID)
}
