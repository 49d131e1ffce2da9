package db

import (
	"errors"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	cfgpkg "github.com/fatflowers/shopdrop/pkg/config"
	"github.com/fatflowers/shopdrop/pkg/tool"
)

// SeedPlans ensures the configured plan catalog exists. Existing rows are left
// untouched so operator edits survive restarts; a zero cap in the seed means
// unlimited and maps to NULL.
func SeedPlans(l *zap.SugaredLogger, gdb *gorm.DB, cfg *cfgpkg.Config) error {
	for _, seed := range cfg.Plans {
		if seed == nil || seed.Name == "" {
			continue
		}
		var existing models.Plan
		err := gdb.Where("name = ?", seed.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		plan := &models.Plan{
			ID:           tool.GenerateUUIDV7(),
			Name:         seed.Name,
			PriceMonthly: seed.PriceMonthly,
			IsActive:     true,
		}
		if seed.PriceAnnually > 0 {
			plan.PriceAnnually = lo.ToPtr(seed.PriceAnnually)
		}
		if seed.MaxProducts > 0 {
			plan.MaxProducts = lo.ToPtr(seed.MaxProducts)
		}
		if seed.MaxOrdersPerMonth > 0 {
			plan.MaxOrdersPerMonth = lo.ToPtr(seed.MaxOrdersPerMonth)
		}
		if seed.MaxStorageGB > 0 {
			plan.MaxStorageGB = lo.ToPtr(seed.MaxStorageGB)
		}
		if err := gdb.Create(plan).Error; err != nil {
			l.Errorf("failed to seed plan %s: %v", seed.Name, err)
			return err
		}
		l.Infow("seeded plan", "name", seed.Name)
	}
	return nil
}
