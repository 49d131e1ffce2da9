package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	dlsvc "github.com/fatflowers/shopdrop/internal/app/service/download"
	"github.com/fatflowers/shopdrop/pkg/response"
)

// @Summary      Resolve download link
// @Description  Public endpoint. Validates a download token and returns the file listing when access is granted. Each successful call counts one download.
// @Tags         Downloads
// @Produce      json
// @Param        token path string true "Download token"
// @Success      200  {object}  handlers.RespOK
// @Failure      403  {object}  handlers.RespOK
// @Failure      404  {object}  handlers.RespOK
// @Failure      410  {object}  handlers.RespOK
// @Router       /api/v1/download/{token}/ [get]
func ApiResolveDownload(svc *dlsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Resolve(c.Request.Context(), c.Param("token"))
		if err != nil {
			switch {
			case errors.Is(err, dlsvc.ErrLinkNotFound):
				c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, "Invalid or expired link."))
			case errors.Is(err, dlsvc.ErrLinkExpired):
				c.JSON(http.StatusGone, response.ErrorT[any](response.APIResponseCodeGone, "This download link has expired."))
			case errors.Is(err, dlsvc.ErrLimitReached):
				c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, "Download limit reached."))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterDownloadRoutes(r gin.IRouter, svc *dlsvc.Service) {
	r.GET("/download/:token/", ApiResolveDownload(svc))
}
