package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/shopdrop/internal/app/api/middleware"
	"github.com/fatflowers/shopdrop/internal/app/service/catalog"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      List products
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/ [get]
func ApiListProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		products, err := svc.ListProducts(c.Request.Context(), st.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(products))
	}
}

// @Summary      Create product
// @Description  Creates a digital product. Rejected with 403 when the plan's product cap is reached.
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201  {object}  handlers.RespOK
// @Failure      403  {object}  handlers.RespOK
// @Router       /api/v1/products/ [post]
func ApiCreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		product, err := svc.CreateProduct(c.Request.Context(), st, &req)
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrProductQuota):
				c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, err.Error()))
			case errors.Is(err, catalog.ErrDuplicateVariant):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusCreated, response.OKT(product))
	}
}

// @Summary      Get product
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/ [get]
func ApiGetProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		product, err := svc.GetProduct(c.Request.Context(), st.ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(product))
	}
}

// @Summary      Update product
// @Tags         Products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.UpdateProductRequest true "Partial update"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/ [put]
func ApiUpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		var req catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		product, err := svc.UpdateProduct(c.Request.Context(), st.ID, c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(product))
	}
}

// @Summary      Delete product
// @Description  Deletes a product with its files and keys, refunding counters.
// @Tags         Products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/ [delete]
func ApiDeleteProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		if err := svc.DeleteProduct(c.Request.Context(), st.ID, c.Param("id")); err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterProductRoutes(r gin.IRouter, svc *catalog.Service) {
	r.GET("/products/", ApiListProducts(svc))
	r.POST("/products/", ApiCreateProduct(svc))
	r.GET("/products/:id/", ApiGetProduct(svc))
	r.PUT("/products/:id/", ApiUpdateProduct(svc))
	r.DELETE("/products/:id/", ApiDeleteProduct(svc))

	RegisterProductFileRoutes(r, svc)
	RegisterLicenseKeyRoutes(r, svc)
}
