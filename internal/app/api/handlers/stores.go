package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/fatflowers/shopdrop/internal/app/api/middleware"
	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/logctx"
	"github.com/fatflowers/shopdrop/pkg/response"
	"github.com/fatflowers/shopdrop/pkg/types"
)

type connectResponse struct {
	Store        *models.Store `json:"store"`
	Created      bool          `json:"created"`
	SessionToken string        `json:"session_token"`
}

// subscriptionState is the store-facing view of subscription status and usage.
type subscriptionState struct {
	SubscriptionStatus  types.SubscriptionStatus `json:"subscription_status"`
	CurrentPlan         *models.Plan             `json:"current_plan"`
	BillingPeriodEndsAt *time.Time               `json:"billing_period_ends_at"`
	ProductCount        int                      `json:"current_product_count"`
	StorageUsedBytes    int64                    `json:"current_storage_used_bytes"`
	MonthOrderCount     int                      `json:"current_month_order_count"`
}

func subscriptionView(st *models.Store) *subscriptionState {
	return &subscriptionState{
		SubscriptionStatus:  st.SubscriptionStatus,
		CurrentPlan:         st.CurrentPlan,
		BillingPeriodEndsAt: st.BillingPeriodEndsAt,
		ProductCount:        st.CurrentProductCount,
		StorageUsedBytes:    st.CurrentStorageUsedBytes,
		MonthOrderCount:     st.CurrentMonthOrderCount,
	}
}

// @Summary      Connect store
// @Description  Onboards a store by domain. Idempotent: reconnecting refreshes the access token and returns a fresh session token.
// @Tags         Stores
// @Accept       json
// @Produce      json
// @Param        request body store.ConnectRequest true "Store onboarding request"
// @Success      200  {object}  handlers.RespOK
// @Success      201  {object}  handlers.RespOK
// @Router       /api/v1/stores/connect/ [post]
func ApiConnectStore(svc *storesvc.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req storesvc.ConnectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "domain and access_token are required"))
			return
		}

		st, created, err := svc.Connect(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		token, err := svc.IssueSessionToken(st)
		if err != nil {
			logctx.FromGin(c, log).Errorw("session_token_issue_failed", "error", err.Error())
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, response.OKT(connectResponse{Store: st, Created: created, SessionToken: token}))
	}
}

// @Summary      Get my store
// @Tags         Stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/stores/me/ [get]
func ApiGetMyStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(st))
	}
}

// @Summary      Get my subscription
// @Tags         Stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/stores/me/subscription/ [get]
func ApiGetSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subscriptionView(st)))
	}
}

type selectPlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// @Summary      Select plan
// @Description  Switches the store onto a plan and activates the subscription.
// @Tags         Stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.selectPlanRequest true "Plan selection"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/stores/me/subscription/ [post]
func ApiSelectPlan(svc *storesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		var req selectPlanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "plan_id is required"))
			return
		}

		updated, err := svc.SelectPlan(c.Request.Context(), st.ID, req.PlanID)
		if err != nil {
			if errors.Is(err, storesvc.ErrPlanNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "plan not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subscriptionView(updated)))
	}
}

// @Summary      Cancel subscription
// @Tags         Stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/stores/me/subscription/ [delete]
func ApiCancelSubscription(svc *storesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		updated, err := svc.CancelSubscription(c.Request.Context(), st.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(subscriptionView(updated)))
	}
}

func RegisterStorePublicRoutes(r gin.IRouter, svc *storesvc.Service, log *zap.SugaredLogger) {
	r.POST("/stores/connect/", ApiConnectStore(svc, log))
}

func RegisterStoreRoutes(r gin.IRouter, svc *storesvc.Service) {
	r.GET("/stores/me/", ApiGetMyStore())
	r.GET("/stores/me/subscription/", ApiGetSubscription())
	r.POST("/stores/me/subscription/", ApiSelectPlan(svc))
	r.DELETE("/stores/me/subscription/", ApiCancelSubscription(svc))
}
