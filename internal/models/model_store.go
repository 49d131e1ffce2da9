package models

import (
	"github.com/fatflowers/shopdrop/pkg/types"
	"time"
)

// Store is one connected merchant (tenant). Usage counters are maintained by
// the owning mutation paths via conditional updates and are never negative.
type Store struct {
	ID string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	// Domain is the storefront platform domain, e.g. "acme.myshopify.com".
	Domain      string  `gorm:"column:domain;type:varchar(255);not null;uniqueIndex" json:"domain"`
	AccessToken string  `gorm:"column:access_token;type:varchar(255);not null" json:"-"`
	Email       *string `gorm:"column:email;type:varchar(255)" json:"email"`
	IsActive    bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`
	// CurrentPlanID is nullable: plans may be retired out from under a store.
	CurrentPlanID          *string                  `gorm:"column:current_plan_id;type:uuid" json:"current_plan_id"`
	CurrentPlan            *Plan                    `gorm:"foreignKey:CurrentPlanID" json:"current_plan,omitempty"`
	ExternalSubscriptionID *string                  `gorm:"column:external_subscription_id;type:varchar(255)" json:"external_subscription_id"`
	SubscriptionStatus     types.SubscriptionStatus `gorm:"column:subscription_status;type:varchar(50)" json:"subscription_status"`
	BillingPeriodEndsAt    *time.Time               `gorm:"column:billing_period_ends_at" json:"billing_period_ends_at"`

	CurrentProductCount     int   `gorm:"column:current_product_count;not null;default:0" json:"current_product_count"`
	CurrentStorageUsedBytes int64 `gorm:"column:current_storage_used_bytes;type:bigint;not null;default:0" json:"current_storage_used_bytes"`
	CurrentMonthOrderCount  int   `gorm:"column:current_month_order_count;not null;default:0" json:"current_month_order_count"`
	// LastOrderCountResetAt is written by an external scheduled job, not by this service.
	LastOrderCountResetAt *time.Time `gorm:"column:last_order_count_reset_at" json:"last_order_count_reset_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Store) TableName() string { return "store" }
