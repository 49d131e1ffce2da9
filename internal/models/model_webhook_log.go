package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookType string

const (
	WebhookTypeOrderCreate WebhookType = "order_create"
	WebhookTypeEmail       WebhookType = "email"
)

type WebhookLogStatus string

const (
	WebhookLogStatusFulfilled WebhookLogStatus = "fulfilled"
	WebhookLogStatusNoDigital WebhookLogStatus = "no_digital"
	WebhookLogStatusSkipped   WebhookLogStatus = "skipped"
	WebhookLogStatusError     WebhookLogStatus = "error"
	WebhookLogStatusSent      WebhookLogStatus = "sent"
)

// WebhookLog is the append-only audit trail of webhook processing. StoreID is
// nil when the inbound domain resolved to no store. Rows are never updated.
type WebhookLog struct {
	ID          string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StoreID     *string          `gorm:"column:store_id;type:uuid;index" json:"store_id"`
	WebhookType WebhookType      `gorm:"column:webhook_type;type:varchar(50);not null" json:"webhook_type"`
	Status      WebhookLogStatus `gorm:"column:status;type:varchar(50);not null" json:"status"`
	Payload     datatypes.JSON   `gorm:"column:payload;type:jsonb" json:"payload"`
	Message     string           `gorm:"column:message;type:text" json:"message"`
	CreatedAt   time.Time        `json:"created_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
