package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

type CreateFileRequest struct {
	FileName      string  `json:"file_name" binding:"required"`
	FilePath      string  `json:"file_path" binding:"required"`
	FileType      *string `json:"file_type"`
	FileSizeBytes int64   `json:"file_size_bytes" binding:"required"`
	DisplayName   *string `json:"display_name"`
}

// ListFiles returns a product's files, ownership-checked against the store.
func (s *Service) ListFiles(ctx context.Context, storeID, productID string) ([]*models.File, error) {
	if _, err := s.GetProduct(ctx, storeID, productID); err != nil {
		return nil, err
	}
	var files []*models.File
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at asc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// CreateFile records an uploaded file and charges its size to the store.
// Crossing the plan's storage cap does not reject the upload; the returned
// warning (empty when under cap) is surfaced on the response instead. The
// counter always moves by the full file size.
func (s *Service) CreateFile(ctx context.Context, st *models.Store, productID string, req *CreateFileRequest) (*models.File, string, error) {
	if _, err := s.GetProduct(ctx, st.ID, productID); err != nil {
		return nil, "", err
	}

	var warning string
	var file *models.File
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := s.storeSvc.LoadPlan(ctx, tx, st)
		if err != nil {
			return err
		}
		if limit := plan.StorageLimitBytes(); limit != nil {
			var current models.Store
			if err := tx.Select("current_storage_used_bytes").Where("id = ?", st.ID).First(&current).Error; err != nil {
				return fmt.Errorf("failed to read storage usage: %w", err)
			}
			if current.CurrentStorageUsedBytes+req.FileSizeBytes > *limit {
				warning = StorageWarning
			}
		}

		file = &models.File{
			ID:            tool.GenerateUUIDV7(),
			ProductID:     productID,
			FileName:      req.FileName,
			FilePath:      req.FilePath,
			FileType:      req.FileType,
			FileSizeBytes: req.FileSizeBytes,
			DisplayName:   req.DisplayName,
		}
		if err := tx.Create(file).Error; err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		return s.storeSvc.AddStorageUsage(ctx, tx, st.ID, req.FileSizeBytes)
	})
	if err != nil {
		return nil, "", err
	}
	if warning != "" {
		logctx.FromCtx(ctx, s.log).Warnw("storage_limit_exceeded", "store_id", st.ID, "file_id", file.ID)
	}
	return file, warning, nil
}

// DeleteFile removes a file and refunds its bytes (clamped at zero).
func (s *Service) DeleteFile(ctx context.Context, storeID, productID, fileID string) error {
	if _, err := s.GetProduct(ctx, storeID, productID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f models.File
		err := tx.Where("id = ? AND product_id = ?", fileID, productID).First(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get file: %w", err)
		}
		if err := tx.Delete(&f).Error; err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
		return s.storeSvc.ReleaseStorageUsage(ctx, tx, storeID, f.FileSizeBytes)
	})
}

// DisplayNameOf returns the customer-facing name of a file.
func DisplayNameOf(f *models.File) string {
	if name := lo.FromPtr(f.DisplayName); name != "" {
		return name
	}
	return f.FileName
}
