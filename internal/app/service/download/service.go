package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/app/service/catalog"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/internal/platform/storage"
	"github.com/fatflowers/shopdrop/pkg/logctx"
)

var (
	ErrLinkNotFound = errors.New("download link not found")
	ErrLinkExpired  = errors.New("download link has expired")
	ErrLimitReached = errors.New("download limit reached")
)

// Service is the download access gateway. It decides whether a token grants
// access; actual file retrieval is delegated to the storage signer.
type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	signer storage.Signer
}

func New(db *gorm.DB, log *zap.SugaredLogger, signer storage.Signer) *Service {
	return &Service{db: db, log: log, signer: signer}
}

type FileEntry struct {
	FileName    string `json:"file_name"`
	DisplayName string `json:"display_name"`
	DownloadURL string `json:"download_url"`
}

type ResolveResult struct {
	Files     []*FileEntry `json:"files"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Resolve validates a download token and, when access is granted, counts the
// download and returns the product's file listing. The max-downloads policy
// is read live from the product, so a merchant raising it revives old links.
// The count check and increment are a single conditional update: concurrent
// resolutions of one token cannot race past the cap.
func (s *Service) Resolve(ctx context.Context, token string) (*ResolveResult, error) {
	var link models.DownloadLink
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up download link: %w", err)
	}

	if !time.Now().Before(link.ExpiresAt) {
		return nil, ErrLinkExpired
	}

	var orderItem models.OrderItem
	if err := s.db.WithContext(ctx).Where("id = ?", link.OrderItemID).First(&orderItem).Error; err != nil {
		return nil, fmt.Errorf("failed to load order item: %w", err)
	}
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", orderItem.ProductID).First(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.DownloadLink{}).
		Where("id = ? AND download_count < ?", link.ID, product.MaxDownloadsPerLink).
		Update("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to count download: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrLimitReached
	}

	var files []*models.File
	if err := s.db.WithContext(ctx).Where("product_id = ?", product.ID).Order("created_at asc").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	ttl := time.Until(link.ExpiresAt)
	entries := make([]*FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, &FileEntry{
			FileName:    f.FileName,
			DisplayName: catalog.DisplayNameOf(f),
			DownloadURL: s.signer.SignedDownloadURL(f.FilePath, ttl),
		})
	}

	logctx.FromCtx(ctx, s.log).Infow("download_resolved", "token", token, "files", len(entries))
	return &ResolveResult{Files: entries, ExpiresAt: link.ExpiresAt}, nil
}
