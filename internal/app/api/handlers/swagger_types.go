package handlers

import (
	"github.com/fatflowers/shopdrop/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
	Warning string                   `json:"warning,omitempty"`
}

// RespPlanList wraps the plan catalog in the standard envelope.
type RespPlanList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []SwaggerPlan            `json:"data"`
}

// SwaggerPlan is a simplified view of models.Plan for documentation purposes.
type SwaggerPlan struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PriceMonthly      int64  `json:"price_monthly"`
	PriceAnnually     *int64 `json:"price_annually"`
	MaxProducts       *int   `json:"max_products"`
	MaxOrdersPerMonth *int   `json:"max_orders_per_month"`
	MaxStorageGB      *int   `json:"max_storage_gb"`
	IsActive          bool   `json:"is_active"`
}
