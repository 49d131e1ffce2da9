package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
	"github.com/fatflowers/shopdrop/pkg/response"
	types "github.com/fatflowers/shopdrop/pkg/types"
)

// @Summary      List webhook logs
// @Description  Operator listing of the webhook audit trail with filters and pagination.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/webhook-logs [get]
func ApiListWebhookLogs(svc *webhooklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from := 0
		if v := c.Query("from"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				from = n
			}
		}
		size := 100
		if v := c.Query("size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				size = n
			} else {
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid size"))
				return
			}
		}

		var filters []*types.CommonFilter
		if storeID := c.Query("store_id"); storeID != "" {
			filters = append(filters, &types.CommonFilter{Field: "store_id", Operator: types.CommonFilterOperatorEq, Values: []any{storeID}})
		}
		if whType := c.Query("webhook_type"); whType != "" {
			filters = append(filters, &types.CommonFilter{Field: "webhook_type", Operator: types.CommonFilterOperatorEq, Values: []any{whType}})
		}
		if status := c.Query("status"); status != "" {
			filters = append(filters, &types.CommonFilter{Field: "status", Operator: types.CommonFilterOperatorEq, Values: []any{status}})
		}

		sortOrder := c.Query("sort_order")
		if sortOrder != "asc" && sortOrder != "desc" {
			sortOrder = "desc"
		}

		res, err := svc.Scan(c.Request.Context(), &webhooklog.ScanRequest{
			Filters:   filters,
			From:      from,
			Size:      size,
			SortBy:    "created_at",
			SortOrder: sortOrder,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, svc *webhooklog.Service) {
	r.GET("/webhook-logs", ApiListWebhookLogs(svc))
}
