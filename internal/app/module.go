package app

import (
    "github.com/fatflowers/shopdrop/internal/app/api/server"
    "github.com/fatflowers/shopdrop/internal/app/service/catalog"
    "github.com/fatflowers/shopdrop/internal/app/service/download"
    "github.com/fatflowers/shopdrop/internal/app/service/fulfillment"
    "github.com/fatflowers/shopdrop/internal/app/service/store"
    "github.com/fatflowers/shopdrop/internal/app/service/webhooklog"
    "github.com/fatflowers/shopdrop/internal/platform/db"
    "github.com/fatflowers/shopdrop/internal/platform/storage"
    "github.com/fatflowers/shopdrop/pkg/config"
    "github.com/fatflowers/shopdrop/pkg/logger"
	"time"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
    logger.Module,
    config.Module,
    db.Module,
    storage.Module,
    server.Module,
    store.Module,
    catalog.Module,
    webhooklog.Module,
    fulfillment.Module,
    download.Module,
)
