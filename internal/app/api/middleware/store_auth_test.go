package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

func newAuthFixture(t *testing.T) (*storesvc.Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Plan{}, &models.Store{}))
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	return storesvc.New(cfg, db, zap.NewNop().Sugar()), db
}

func newAuthRouter(svc *storesvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", StoreAuthMiddleware(svc), func(c *gin.Context) {
		st, ok := StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no store in context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"store_id": st.ID})
	})
	return r
}

func TestStoreAuthMiddleware(t *testing.T) {
	svc, db := newAuthFixture(t)
	r := newAuthRouter(svc)

	st := &models.Store{ID: tool.GenerateUUIDV7(), Domain: "acme.myshopify.com", AccessToken: "tok", IsActive: true}
	require.NoError(t, db.Create(st).Error)
	token, err := svc.IssueSessionToken(st)
	require.NoError(t, err)

	// No header.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), st.ID)

	// Deactivated store is rejected even with a valid token.
	require.NoError(t, db.Model(st).Update("is_active", false).Error)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware("sekret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-API-Key", "sekret")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// An empty configured key locks the surface instead of opening it.
	r2 := gin.New()
	r2.GET("/admin", AdminAuthMiddleware(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	r2.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
