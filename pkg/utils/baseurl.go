package utils

import (
	"github.com/Mpratama260304/MpratamaStore-sub001/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

// BaseURL returns the externally visible origin for building gateway
// return URLs and signed download links. A configured base_url wins;
// otherwise it is derived from forwarded headers set by the proxy.
func BaseURL(c *gin.Context) string {
	if base := config.GlobalConfig.Server.BaseURL; base != "" {
		return base
	}

	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if c.Request.TLS != nil {
			proto = "https"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}
