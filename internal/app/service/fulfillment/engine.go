package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

var (
	ErrStoreNotFound = errors.New("store not found for domain")
	ErrQuotaExceeded = errors.New("plan order limit exceeded")
)

// Engine turns an inbound order-creation event into download links and
// license grants. Order, items, links, key claims and the monthly counter
// move inside one transaction; audit rows are written after it resolves so a
// rolled-back order still leaves a trail.
type Engine struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	storeSvc *storesvc.Service
	auditSvc *webhooklog.Service
}

func NewEngine(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, storeSvc *storesvc.Service, auditSvc *webhooklog.Service) *Engine {
	return &Engine{cfg: cfg, db: db, log: log, storeSvc: storeSvc, auditSvc: auditSvc}
}

// OrderEvent is the normalized order-creation webhook payload. ShopDomain
// arrives in a transport header or in the payload itself; the handler decides.
type OrderEvent struct {
	ShopDomain      string     `json:"shop_domain"`
	ExternalOrderID int64      `json:"id"`
	Email           string     `json:"email"`
	LineItems       []LineItem `json:"line_items"`
}

type LineItem struct {
	ExternalProductID int64 `json:"product_id"`
	ExternalVariantID int64 `json:"variant_id"`
	Quantity          int   `json:"quantity"`
}

type LineItemStatus string

const (
	LineItemFulfilled       LineItemStatus = "fulfilled"
	LineItemSkippedNotFound LineItemStatus = "skipped_not_found"
	LineItemSkippedPhysical LineItemStatus = "skipped_not_digital"
)

// LineItemResult makes per-item skips observable without turning them into
// errors.
type LineItemResult struct {
	ExternalProductID int64          `json:"external_product_id"`
	ExternalVariantID int64          `json:"external_variant_id"`
	Status            LineItemStatus `json:"status"`
	DownloadToken     string         `json:"download_token,omitempty"`
	LicenseKey        string         `json:"license_key,omitempty"`
}

type Result struct {
	OrderID string                  `json:"order_id"`
	Status  models.WebhookLogStatus `json:"status"`
	Items   []*LineItemResult       `json:"items"`
}

// FulfillOrder processes one order event end to end. Terminal failures are
// ErrStoreNotFound and ErrQuotaExceeded; both are audited and neither leaves
// an Order row behind.
func (e *Engine) FulfillOrder(ctx context.Context, event *OrderEvent) (*Result, error) {
	log := logctx.FromCtx(ctx, e.log)
	payload := marshalPayload(event)

	st, err := e.storeSvc.GetByDomain(ctx, event.ShopDomain)
	if err != nil {
		if errors.Is(err, storesvc.ErrStoreNotFound) {
			e.auditSvc.Save(ctx, &models.WebhookLog{
				WebhookType: models.WebhookTypeOrderCreate,
				Status:      models.WebhookLogStatusError,
				Payload:     payload,
				Message:     fmt.Sprintf("Store not found for domain: %s", event.ShopDomain),
			})
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	result := &Result{Items: make([]*LineItemResult, 0, len(event.LineItems))}
	digitalFulfilled := false

	txErr := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := e.storeSvc.LoadPlan(ctx, tx, st)
		if err != nil {
			return err
		}

		// Quota check and counter increment are one conditional update, so
		// two concurrent webhooks cannot both pass a cap of N-1. The counter
		// moves once per accepted order even when no line item is digital.
		ok, err := e.storeSvc.TryConsumeOrderQuota(ctx, tx, st, plan)
		if err != nil {
			return err
		}
		if !ok {
			return ErrQuotaExceeded
		}

		order := &models.Order{
			ID:              tool.GenerateUUIDV7(),
			StoreID:         st.ID,
			ExternalOrderID: event.ExternalOrderID,
			Email:           event.Email,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		result.OrderID = order.ID

		for _, item := range event.LineItems {
			itemRes, err := e.fulfillLineItem(ctx, tx, st, order, &item)
			if err != nil {
				return err
			}
			result.Items = append(result.Items, itemRes)
			if itemRes.Status == LineItemFulfilled {
				digitalFulfilled = true
			}
		}
		return nil
	})

	if errors.Is(txErr, ErrQuotaExceeded) {
		e.auditSvc.Save(ctx, &models.WebhookLog{
			StoreID:     &st.ID,
			WebhookType: models.WebhookTypeOrderCreate,
			Status:      models.WebhookLogStatusSkipped,
			Payload:     payload,
			Message:     "Plan order limit exceeded. Order not fulfilled.",
		})
		return nil, ErrQuotaExceeded
	}
	if txErr != nil {
		return nil, txErr
	}

	result.Status = models.WebhookLogStatusNoDigital
	message := "Order processed, no digital items."
	if digitalFulfilled {
		result.Status = models.WebhookLogStatusFulfilled
		message = "Order processed and fulfilled."
	}
	e.auditSvc.Save(ctx, &models.WebhookLog{
		StoreID:     &st.ID,
		WebhookType: models.WebhookTypeOrderCreate,
		Status:      result.Status,
		Payload:     payload,
		Message:     message,
	})

	// Email dispatch belongs to an external collaborator; only the intent is
	// recorded here.
	emailPayload, _ := json.Marshal(map[string]any{"order_id": result.OrderID, "email": event.Email})
	e.auditSvc.Save(ctx, &models.WebhookLog{
		StoreID:     &st.ID,
		WebhookType: models.WebhookTypeEmail,
		Status:      models.WebhookLogStatusSent,
		Payload:     datatypes.JSON(emailPayload),
		Message:     "Download email would be sent to customer.",
	})

	log.Infow("order_fulfilled",
		"store_id", st.ID,
		"order_id", result.OrderID,
		"status", result.Status,
		"items", len(result.Items),
	)
	return result, nil
}

// fulfillLineItem resolves a line item to a product and, when digital,
// creates the order item, issues a download link and claims a license key.
// Unknown or physical items are skipped without error.
func (e *Engine) fulfillLineItem(ctx context.Context, tx *gorm.DB, st *models.Store, order *models.Order, item *LineItem) (*LineItemResult, error) {
	res := &LineItemResult{
		ExternalProductID: item.ExternalProductID,
		ExternalVariantID: item.ExternalVariantID,
	}

	var product models.Product
	err := tx.Where("store_id = ? AND external_product_id = ? AND external_variant_id = ?",
		st.ID, item.ExternalProductID, item.ExternalVariantID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		res.Status = LineItemSkippedNotFound
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if !product.IsDigital {
		res.Status = LineItemSkippedPhysical
		return res, nil
	}

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	orderItem := &models.OrderItem{
		ID:        tool.GenerateUUIDV7(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	if err := tx.Create(orderItem).Error; err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}

	token := tool.GenerateDownloadToken()
	link := &models.DownloadLink{
		ID:          tool.GenerateUUIDV7(),
		OrderItemID: orderItem.ID,
		Token:       token,
		URL:         fmt.Sprintf("%s/api/v1/download/%s/", e.cfg.Download.PublicBaseURL, token),
		ExpiresAt:   time.Now().Add(time.Duration(product.LinkExpirationHours) * time.Hour),
	}
	if err := tx.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create download link: %w", err)
	}
	res.DownloadToken = token

	key, err := e.claimLicenseKey(ctx, tx, &product, orderItem)
	if err != nil {
		return nil, err
	}
	if key != nil {
		res.LicenseKey = key.Key
	}

	res.Status = LineItemFulfilled
	return res, nil
}

// claimLicenseKey assigns the lowest-id unassigned key of the product, or nil
// when the pool is empty. The claim is a conditional update on is_assigned so
// a key can never be granted twice; losing the race to another claimer just
// means trying the next key.
func (e *Engine) claimLicenseKey(ctx context.Context, tx *gorm.DB, product *models.Product, orderItem *models.OrderItem) (*models.LicenseKey, error) {
	for {
		var key models.LicenseKey
		err := tx.Where("product_id = ? AND is_assigned = ?", product.ID, false).
			Order("id asc").First(&key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to select license key: %w", err)
		}

		claim := tx.Model(&models.LicenseKey{}).
			Where("id = ? AND is_assigned = ?", key.ID, false).
			Update("is_assigned", true)
		if claim.Error != nil {
			return nil, fmt.Errorf("failed to claim license key: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			continue
		}

		assigned := &models.AssignedLicenseKey{
			ID:           tool.GenerateUUIDV7(),
			OrderItemID:  orderItem.ID,
			LicenseKeyID: key.ID,
			AssignedAt:   time.Now(),
		}
		if err := tx.Create(assigned).Error; err != nil {
			return nil, fmt.Errorf("failed to record license assignment: %w", err)
		}
		key.IsAssigned = true
		return &key, nil
	}
}

func marshalPayload(event *OrderEvent) datatypes.JSON {
	b, err := json.Marshal(event)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
