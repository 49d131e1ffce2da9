package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fatflowers/shopdrop/docs"
	"github.com/fatflowers/shopdrop/internal/app/api/handlers"
	catalogsvc "github.com/fatflowers/shopdrop/internal/app/service/catalog"
	dlsvc "github.com/fatflowers/shopdrop/internal/app/service/download"
	"github.com/fatflowers/shopdrop/internal/app/service/fulfillment"
	storesvc "github.com/fatflowers/shopdrop/internal/app/service/store"
	"github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
	"github.com/fatflowers/shopdrop/internal/platform/storage"
	cfgpkg "github.com/fatflowers/shopdrop/pkg/config"

	mw "github.com/fatflowers/shopdrop/internal/app/api/middleware"

	metrics "github.com/fatflowers/shopdrop/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	gdb *gorm.DB,
	storeService *storesvc.Service,
	catalogService *catalogsvc.Service,
	engine *fulfillment.Engine,
	downloadService *dlsvc.Service,
	auditService *webhooklog.Service,
	signer storage.Signer,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public API: plan catalog, onboarding, customer downloads, platform webhooks
	apiV1Public := r.Group("/api/v1")
	apiV1Public.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPlanRoutes(apiV1Public, gdb)
	handlers.RegisterStorePublicRoutes(apiV1Public, storeService, log)
	handlers.RegisterDownloadRoutes(apiV1Public, downloadService)
	handlers.RegisterWebhookRoutes(apiV1Public, engine, log)

	// Merchant API: session-token authenticated, tenant injected from claims
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.StoreAuthMiddleware(storeService))
	handlers.RegisterStoreRoutes(apiV1, storeService)
	handlers.RegisterProductRoutes(apiV1, catalogService)
	handlers.RegisterSignedURLRoutes(apiV1, signer)

	// Operator API
	admin := r.Group("/api/v1/admin")
	admin.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(), mw.AdminAuthMiddleware(cfg.Auth.AdminAPIKey))
	handlers.RegisterAdminRoutes(admin, auditService)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
