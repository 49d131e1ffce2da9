package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/response"
)

const ContextStoreKey = "store"

// StoreAuthMiddleware authenticates merchant endpoints with the bearer token
// issued at connect time and injects the resolved Store into gin.Context.
// Handlers never guess the tenant; they read it from context.
func StoreAuthMiddleware(svc *storesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}

		claims, err := svc.ParseSessionToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid session token"))
			return
		}

		st, err := svc.Get(c.Request.Context(), claims.StoreID)
		if err != nil || !st.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "store not found or inactive"))
			return
		}

		c.Set(ContextStoreKey, st)
		c.Next()
	}
}

// StoreFromContext returns the authenticated store set by StoreAuthMiddleware.
func StoreFromContext(c *gin.Context) (*models.Store, bool) {
	v, ok := c.Get(ContextStoreKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*models.Store)
	return st, ok && st != nil
}

// AdminAuthMiddleware guards operator endpoints with a static API key.
func AdminAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || c.GetHeader("X-Admin-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid admin api key"))
			return
		}
		c.Next()
	}
}
