package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrKeyNotFound        = errors.New("license key not found")
	ErrProductQuota       = errors.New("product limit reached for your plan")
	ErrDuplicateVariant   = errors.New("product variant already exists for this store")
	ErrKeyAlreadyAssigned = errors.New("license key is assigned and cannot be deleted")
)

// StorageWarning is attached to successful file uploads that push the store
// past its plan's storage cap. The upload itself is never rejected: the bytes
// are already committed by the time the check runs.
const StorageWarning = "Storage limit exceeded for your plan."

type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	storeSvc *storesvc.Service
}

func New(db *gorm.DB, log *zap.SugaredLogger, storeSvc *storesvc.Service) *Service {
	return &Service{db: db, log: log, storeSvc: storeSvc}
}

type CreateProductRequest struct {
	ExternalProductID   int64  `json:"external_product_id" binding:"required"`
	ExternalVariantID   int64  `json:"external_variant_id" binding:"required"`
	Name                string `json:"name" binding:"required"`
	IsDigital           *bool  `json:"is_digital"`
	MaxDownloadsPerLink *int   `json:"max_downloads_per_link"`
	LinkExpirationHours *int   `json:"link_expiration_hours"`
}

type UpdateProductRequest struct {
	Name                *string `json:"name"`
	IsDigital           *bool   `json:"is_digital"`
	MaxDownloadsPerLink *int    `json:"max_downloads_per_link"`
	LinkExpirationHours *int    `json:"link_expiration_hours"`
}

// ListProducts returns the authenticated store's products.
func (s *Service) ListProducts(ctx context.Context, storeID string) ([]*models.Product, error) {
	var products []*models.Product
	if err := s.db.WithContext(ctx).Where("store_id = ?", storeID).Order("created_at asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct loads one product owned by the store.
func (s *Service) GetProduct(ctx context.Context, storeID, productID string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Where("id = ? AND store_id = ?", productID, storeID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// CreateProduct creates a product after consuming product quota. The quota
// check and counter increment are one conditional update, so concurrent
// creates cannot both squeeze under the cap.
func (s *Service) CreateProduct(ctx context.Context, st *models.Store, req *CreateProductRequest) (*models.Product, error) {
	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.storeSvc.LoadPlan(ctx, tx, st)
		if err != nil {
			return err
		}
		ok, err := s.storeSvc.TryIncrementProductCount(ctx, tx, st, plan)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProductQuota
		}

		product = &models.Product{
			ID:                  tool.GenerateUUIDV7(),
			StoreID:             st.ID,
			ExternalProductID:   req.ExternalProductID,
			ExternalVariantID:   req.ExternalVariantID,
			Name:                req.Name,
			IsDigital:           true,
			MaxDownloadsPerLink: 5,
			LinkExpirationHours: 72,
		}
		if req.IsDigital != nil {
			product.IsDigital = *req.IsDigital
		}
		if req.MaxDownloadsPerLink != nil {
			product.MaxDownloadsPerLink = *req.MaxDownloadsPerLink
		}
		if req.LinkExpirationHours != nil {
			product.LinkExpirationHours = *req.LinkExpirationHours
		}
		if cerr := tx.Create(product).Error; cerr != nil {
			if errors.Is(cerr, gorm.ErrDuplicatedKey) {
				return ErrDuplicateVariant
			}
			return fmt.Errorf("failed to create product: %w", cerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("product_created", "store_id", st.ID, "product_id", product.ID)
	return product, nil
}

// UpdateProduct applies partial updates to a store's product.
func (s *Service) UpdateProduct(ctx context.Context, storeID, productID string, req *UpdateProductRequest) (*models.Product, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.IsDigital != nil {
		updates["is_digital"] = *req.IsDigital
	}
	if req.MaxDownloadsPerLink != nil {
		updates["max_downloads_per_link"] = *req.MaxDownloadsPerLink
	}
	if req.LinkExpirationHours != nil {
		updates["link_expiration_hours"] = *req.LinkExpirationHours
	}
	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ? AND store_id = ?", productID, storeID).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrProductNotFound
		}
	}
	return s.GetProduct(ctx, storeID, productID)
}

// DeleteProduct removes a product with its files and keys, refunding the
// product counter and any storage the files held.
func (s *Service) DeleteProduct(ctx context.Context, storeID, productID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		err := tx.Where("id = ? AND store_id = ?", productID, storeID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get product: %w", err)
		}

		var storageBytes int64
		row := tx.Model(&models.File{}).Where("product_id = ?", p.ID).
			Select("COALESCE(SUM(file_size_bytes), 0)").Row()
		if err := row.Scan(&storageBytes); err != nil {
			return fmt.Errorf("failed to sum file sizes: %w", err)
		}

		if err := tx.Where("product_id = ?", p.ID).Delete(&models.File{}).Error; err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&models.LicenseKey{}).Error; err != nil {
			return fmt.Errorf("failed to delete license keys: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		if err := s.storeSvc.DecrementProductCount(ctx, tx, storeID); err != nil {
			return err
		}
		if storageBytes > 0 {
			if err := s.storeSvc.ReleaseStorageUsage(ctx, tx, storeID, storageBytes); err != nil {
				return err
			}
		}
		return nil
	})
}
