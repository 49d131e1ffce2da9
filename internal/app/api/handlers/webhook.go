package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/shopdrop/internal/app/service/fulfillment"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      Order-creation webhook
// @Description  Public endpoint called by the storefront platform when an order is created. The owning store is identified by the X-Shopify-Shop-Domain header or the shop_domain payload field.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body fulfillment.OrderEvent true "Order creation payload"
// @Success      200  {object}  handlers.RespOK
// @Failure      403  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Router       /api/v1/webhooks/shopify/orders/create/ [post]
func ApiOrderCreateWebhook(engine *fulfillment.Engine, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event fulfillment.OrderEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if domain := c.GetHeader("X-Shopify-Shop-Domain"); domain != "" {
			event.ShopDomain = domain
		}

		logctx.FromGin(c, log).Infow("webhook_order_create_received", "shop_domain", event.ShopDomain)

		res, err := engine.FulfillOrder(c.Request.Context(), &event)
		if err != nil {
			switch {
			case errors.Is(err, fulfillment.ErrStoreNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "Store not found."))
			case errors.Is(err, fulfillment.ErrQuotaExceeded):
				c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "Plan order limit exceeded."))
			default:
				logctx.FromGin(c, log).Errorw("webhook_order_create_error", "error", err.Error())
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}

		logctx.FromGin(c, log).Infow("webhook_order_create_handled", "order_id", res.OrderID, "status", res.Status)
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, engine *fulfillment.Engine, log *zap.SugaredLogger) {
	r.POST("/webhooks/shopify/orders/create/", ApiOrderCreateWebhook(engine, log))
}
