package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/fatflowers/shopdrop/internal/app/api/middleware"
	"github.com/fatflowers/shopdrop/internal/app/service/catalog"
	"github.com/fatflowers/shopdrop/internal/platform/storage"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      List product files
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/files/ [get]
func ApiListFiles(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		files, err := svc.ListFiles(c.Request.Context(), st.ID, c.Param("id"))
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(files))
	}
}

// @Summary      Register uploaded file
// @Description  Records an uploaded file and charges its size to the store. Passing the plan's storage cap does not reject the upload; the response carries a warning instead.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body catalog.CreateFileRequest true "File metadata"
// @Success      201  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/files/ [post]
func ApiCreateFile(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		var req catalog.CreateFileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		file, warning, err := svc.CreateFile(c.Request.Context(), st, c.Param("id"), &req)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		if warning != "" {
			c.JSON(http.StatusCreated, response.WarnT(file, warning))
			return
		}
		c.JSON(http.StatusCreated, response.OKT(file))
	}
}

// @Summary      Delete file
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/files/{fileID}/ [delete]
func ApiDeleteFile(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := mw.StoreFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "not authenticated"))
			return
		}
		err := svc.DeleteFile(c.Request.Context(), st.ID, c.Param("id"), c.Param("fileID"))
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrFileNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

type signedURLRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

type signedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
}

// @Summary      Signed upload URL
// @Description  Returns a pre-signed upload URL from the storage collaborator.
// @Tags         Files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body handlers.signedURLRequest true "File name"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/products/{id}/files/signed-url/ [post]
func ApiSignedUploadURL(signer storage.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signedURLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "file_name is required"))
			return
		}
		uploadURL, fileURL := signer.SignedUploadURL(req.FileName)
		c.JSON(http.StatusOK, response.OKT(signedURLResponse{UploadURL: uploadURL, FileURL: fileURL}))
	}
}

func RegisterProductFileRoutes(r gin.IRouter, svc *catalog.Service) {
	r.GET("/products/:id/files/", ApiListFiles(svc))
	r.POST("/products/:id/files/", ApiCreateFile(svc))
	r.DELETE("/products/:id/files/:fileID/", ApiDeleteFile(svc))
}

func RegisterSignedURLRoutes(r gin.IRouter, signer storage.Signer) {
	r.POST("/products/:id/files/signed-url/", ApiSignedUploadURL(signer))
}
