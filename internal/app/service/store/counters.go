package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
)

// Counter mutations are single conditional UPDATE statements so two
// concurrent requests cannot both pass a check-then-act window. Decrements
// clamp at zero instead of reporting an error.

// TryConsumeOrderQuota increments the monthly order counter iff the plan cap
// (when finite) has headroom. Returns false when the cap is already reached;
// no row is modified in that case. Runs on the caller's transaction handle.
func (s *Service) TryConsumeOrderQuota(ctx context.Context, tx *gorm.DB, st *models.Store, plan *models.Plan) (bool, error) {
	q := tx.WithContext(ctx).Model(&models.Store{}).Where("id = ?", st.ID)
	if plan != nil && plan.MaxOrdersPerMonth != nil {
		q = q.Where("current_month_order_count < ?", *plan.MaxOrdersPerMonth)
	}
	res := q.Update("current_month_order_count", gorm.Expr("current_month_order_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume order quota: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// TryIncrementProductCount bumps the product counter iff under the plan's
// product cap. Returns false when the cap is reached.
func (s *Service) TryIncrementProductCount(ctx context.Context, tx *gorm.DB, st *models.Store, plan *models.Plan) (bool, error) {
	q := tx.WithContext(ctx).Model(&models.Store{}).Where("id = ?", st.ID)
	if plan != nil && plan.MaxProducts != nil {
		q = q.Where("current_product_count < ?", *plan.MaxProducts)
	}
	res := q.Update("current_product_count", gorm.Expr("current_product_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment product count: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DecrementProductCount lowers the product counter, clamped at zero.
func (s *Service) DecrementProductCount(ctx context.Context, tx *gorm.DB, storeID string) error {
	err := tx.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).
		Update("current_product_count",
			gorm.Expr("CASE WHEN current_product_count > 0 THEN current_product_count - 1 ELSE 0 END")).Error
	if err != nil {
		return fmt.Errorf("failed to decrement product count: %w", err)
	}
	return nil
}

// AddStorageUsage charges uploaded bytes to the store. The storage cap is a
// soft limit: usage is recorded even past the cap, the caller only surfaces a
// warning (the upload is already committed by the time this runs).
func (s *Service) AddStorageUsage(ctx context.Context, tx *gorm.DB, storeID string, bytes int64) error {
	err := tx.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).
		Update("current_storage_used_bytes", gorm.Expr("current_storage_used_bytes + ?", bytes)).Error
	if err != nil {
		return fmt.Errorf("failed to add storage usage: %w", err)
	}
	return nil
}

// ReleaseStorageUsage refunds bytes on file deletion, clamped at zero.
func (s *Service) ReleaseStorageUsage(ctx context.Context, tx *gorm.DB, storeID string, bytes int64) error {
	err := tx.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).
		Update("current_storage_used_bytes",
			gorm.Expr("CASE WHEN current_storage_used_bytes >= ? THEN current_storage_used_bytes - ? ELSE 0 END", bytes, bytes)).Error
	if err != nil {
		return fmt.Errorf("failed to release storage usage: %w", err)
	}
	return nil
}

// LoadPlan fetches the store's current plan, or nil when none is set or the
// plan row has been deleted.
func (s *Service) LoadPlan(ctx context.Context, tx *gorm.DB, st *models.Store) (*models.Plan, error) {
	if st.CurrentPlanID == nil {
		return nil, nil
	}
	var plan models.Plan
	err := tx.WithContext(ctx).Where("id = ?", *st.CurrentPlanID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &plan, nil
}
