package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/tool"
	"github.com/fatflowers/shopdrop/pkg/types"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrPlanNotFound  = errors.New("plan not found")
	ErrQuotaExceeded = errors.New("plan quota exceeded")
)

type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

type ConnectRequest struct {
	Domain      string  `json:"domain" binding:"required"`
	AccessToken string  `json:"access_token" binding:"required"`
	Email       *string `json:"email"`
}

// Connect onboards a store, idempotently keyed by domain. A repeated call
// refreshes the access token and email and reactivates the store instead of
// creating a duplicate. New stores start on the oldest active plan.
func (s *Service) Connect(ctx context.Context, req *ConnectRequest) (st *models.Store, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Store
		ferr := tx.Where("domain = ?", req.Domain).First(&existing).Error
		if ferr == nil {
			existing.AccessToken = req.AccessToken
			if req.Email != nil && *req.Email != "" {
				existing.Email = req.Email
			}
			existing.IsActive = true
			if uerr := tx.Save(&existing).Error; uerr != nil {
				return fmt.Errorf("failed to update store: %w", uerr)
			}
			st = &existing
			return nil
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up store: %w", ferr)
		}

		var defaultPlan models.Plan
		var planID *string
		if perr := tx.Where("is_active = ?", true).Order("id asc").First(&defaultPlan).Error; perr == nil {
			planID = lo.ToPtr(defaultPlan.ID)
		} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up default plan: %w", perr)
		}

		st = &models.Store{
			ID:            tool.GenerateUUIDV7(),
			Domain:        req.Domain,
			AccessToken:   req.AccessToken,
			Email:         req.Email,
			IsActive:      true,
			CurrentPlanID: planID,
		}
		if cerr := tx.Create(st).Error; cerr != nil {
			return fmt.Errorf("failed to create store: %w", cerr)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	logctx.FromCtx(ctx, s.log).Infow("store_connected", "domain", req.Domain, "created", created)
	return st, created, nil
}

// Get loads a store with its current plan preloaded.
func (s *Service) Get(ctx context.Context, storeID string) (*models.Store, error) {
	var st models.Store
	err := s.db.WithContext(ctx).Preload("CurrentPlan").Where("id = ?", storeID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &st, nil
}

// GetByDomain resolves a store from its storefront domain.
func (s *Service) GetByDomain(ctx context.Context, domain string) (*models.Store, error) {
	var st models.Store
	err := s.db.WithContext(ctx).Preload("CurrentPlan").Where("domain = ?", domain).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store by domain: %w", err)
	}
	return &st, nil
}

// SelectPlan switches a store onto a plan and activates the subscription.
func (s *Service) SelectPlan(ctx context.Context, storeID string, planID string) (*models.Store, error) {
	var plan models.Plan
	err := s.db.WithContext(ctx).Where("id = ?", planID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	res := s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).
		Updates(map[string]any{
			"current_plan_id":     plan.ID,
			"subscription_status": types.SubscriptionStatusActive,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update store plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStoreNotFound
	}
	logctx.FromCtx(ctx, s.log).Infow("store_plan_selected", "store_id", storeID, "plan", plan.Name)
	return s.Get(ctx, storeID)
}

// CancelSubscription marks the subscription canceled. The plan reference is
// kept so quota enforcement stays in effect until the billing period ends.
func (s *Service) CancelSubscription(ctx context.Context, storeID string) (*models.Store, error) {
	res := s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", storeID).
		Update("subscription_status", types.SubscriptionStatusCanceled)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrStoreNotFound
	}
	return s.Get(ctx, storeID)
}
