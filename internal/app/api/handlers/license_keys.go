package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/shopdrop/internal/app/api/middleware"
	"github.com/fatflowers/shopdrop/internal/app/service/catalog"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      List license keys
// @Tags         LicenseKeys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/license-keys/ [get]
func ApiListLicenseKeys(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		keys, err := svc.ListLicenseKeys(c.Request.Context(), st.ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(keys))
	}
}

// @Summary      Provision license keys
// @Description  Adds a batch of unassigned keys to a product's pool.
// @Tags         LicenseKeys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.CreateLicenseKeysRequest true "Keys"
// @Success      201  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/license-keys/ [post]
func ApiCreateLicenseKeys(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		var req catalog.CreateLicenseKeysRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "keys is required"))
			return
		}
		keys, err := svc.CreateLicenseKeys(c.Request.Context(), st.ID, c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusCreated, response.OKT(keys))
	}
}

// @Summary      Delete license key
// @Description  Removes an unassigned key. Assigned keys are part of a customer's grant and cannot be deleted.
// @Tags         LicenseKeys
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/license-keys/{keyID}/ [delete]
func ApiDeleteLicenseKey(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		err := svc.DeleteLicenseKey(c.Request.Context(), st.ID, c.Param("id"), c.Param("keyID"))
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrKeyNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			case errors.Is(err, catalog.ErrKeyAlreadyAssigned):
				c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterLicenseKeyRoutes(r gin.IRouter, svc *catalog.Service) {
	r.GET("/products/:id/license-keys/", ApiListLicenseKeys(svc))
	r.POST("/products/:id/license-keys/", ApiCreateLicenseKeys(svc))
	r.DELETE("/products/:id/license-keys/:keyID/", ApiDeleteLicenseKey(svc))
}
