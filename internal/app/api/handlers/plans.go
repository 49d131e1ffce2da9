package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fatflowers/shopdrop/internal/models"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      List plans
// @Description  Returns all active subscription plans.
// @Tags         Plans
// @Produce      json
// @Success      200  {object}  handlers.RespPlanList
// @Router       /api/v1/plans/ [get]
func ApiListPlans(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var plans []*models.Plan
		if err := db.WithContext(c.Request.Context()).Where("is_active = ?", true).Order("id asc").Find(&plans).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(plans))
	}
}

func RegisterPlanRoutes(r gin.IRouter, db *gorm.DB) {
	r.GET("/plans/", ApiListPlans(db))
}
