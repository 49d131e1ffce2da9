package models

import "time"

// Order is created once per accepted order webhook.
type Order struct {
	ID              string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	StoreID         string    `gorm:"column:store_id;type:uuid;not null;index" json:"store_id"`
	ExternalOrderID int64     `gorm:"column:external_order_id;type:bigint;not null" json:"external_order_id"`
	Email           string    `gorm:"column:email;type:varchar(255);not null" json:"email"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "order" }

// OrderItem is one fulfillable digital line item of an order.
type OrderItem struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderID   string    `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductID string    `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string { return "order_item" }
