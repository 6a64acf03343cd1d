package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Mpratama260304/MpratamaStore-sub001/internal/domain/download/service"
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/middleware"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/response"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/signer"
	"github.com/Mpratama260304/MpratamaStore-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DownloadHandler struct {
	service service.DownloadService
}

func NewDownloadHandler(s service.DownloadService) *DownloadHandler {
	return &DownloadHandler{service: s}
}

// RequestDownload issues a signed, expiring link for an asset the
// caller is entitled to.
// @Summary Request download link
// @Tags Download
// @Produce json
// @Router /downloads/{assetId} [get]
func (h *DownloadHandler) RequestDownload(c *gin.Context) {
	token, err := h.service.RequestDownload(c.Request.Context(), middleware.UserID(c), c.Param("assetId"), c.Query("orderId"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	q := url.Values{}
	q.Set("asset", token.AssetID)
	q.Set("user", token.UserID)
	q.Set("order", token.OrderID)
	q.Set("expires", strconv.FormatInt(token.ExpiresAt, 10))
	q.Set("sig", token.Signature)

	response.Success(c, gin.H{
		"url":       utils.BaseURL(c) + "/downloads/file?" + q.Encode(),
		"expiresAt": token.ExpiresAt,
	})
}

// ServeFile streams the asset behind a signed link. The signature is
// the sole credential; no session is required.
// @Summary Download file
// @Tags Download
// @Produce octet-stream
// @Router /downloads/file [get]
func (h *DownloadHandler) ServeFile(c *gin.Context) {
	expires, _ := strconv.ParseInt(c.Query("expires"), 10, 64)
	token := signer.Token{
		AssetID:   c.Query("asset"),
		UserID:    c.Query("user"),
		OrderID:   c.Query("order"),
		ExpiresAt: expires,
		Signature: c.Query("sig"),
	}

	stream, err := h.service.ServeFile(c.Request.Context(), token)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer stream.Body.Close()

	contentType := stream.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.Filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	_, _ = io.Copy(c.Writer, stream.Body)
}
