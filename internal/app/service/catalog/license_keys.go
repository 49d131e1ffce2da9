package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

type CreateLicenseKeysRequest struct {
	// Keys accepts a batch so merchants can paste a whole pool at once.
	Keys []string `json:"keys" binding:"required,min=1"`
}

// ListLicenseKeys returns a product's key pool, assigned keys included.
func (s *Service) ListLicenseKeys(ctx context.Context, storeID, productID string) ([]*models.LicenseKey, error) {
	if _, err := s.GetProduct(ctx, storeID, productID); err != nil {
		return nil, err
	}
	var keys []*models.LicenseKey
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id asc").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list license keys: %w", err)
	}
	return keys, nil
}

// CreateLicenseKeys provisions a batch of unassigned keys for a product.
func (s *Service) CreateLicenseKeys(ctx context.Context, storeID, productID string, req *CreateLicenseKeysRequest) ([]*models.LicenseKey, error) {
	if _, err := s.GetProduct(ctx, storeID, productID); err != nil {
		return nil, err
	}
	keys := make([]*models.LicenseKey, 0, len(req.Keys))
	for _, k := range req.Keys {
		if k == "" {
			continue
		}
		keys = append(keys, &models.LicenseKey{
			ID:        tool.GenerateUUIDV7(),
			ProductID: productID,
			Key:       k,
		})
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no non-empty keys provided")
	}
	if err := s.db.WithContext(ctx).Create(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to create license keys: %w", err)
	}
	return keys, nil
}

// DeleteLicenseKey removes an unassigned key. Assigned keys are part of a
// customer's grant and stay.
func (s *Service) DeleteLicenseKey(ctx context.Context, storeID, productID, keyID string) error {
	if _, err := s.GetProduct(ctx, storeID, productID); err != nil {
		return err
	}
	var key models.LicenseKey
	err := s.db.WithContext(ctx).Where("id = ? AND product_id = ?", keyID, productID).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrKeyNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get license key: %w", err)
	}
	if key.IsAssigned {
		return ErrKeyAlreadyAssigned
	}
	if err := s.db.WithContext(ctx).Delete(&key).Error; err != nil {
		return fmt.Errorf("failed to delete license key: %w", err)
	}
	return nil
}
