// Package subnet ограничивает доступ к служебным маршрутам доверенной подсетью.
package subnet

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Trusted пропускает запрос, только если адрес клиента входит в подсеть cidr.
// Адрес берётся из заголовка X-Real-IP, при его отсутствии из c.ClientIP().
// Пустая или невалидная подсеть запрещает доступ всем.
//
//	internal := r.Group("/")
//	internal.Use(subnet.Trusted(cfg.TrustedSubnet, logger.Log()))
//	internal.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Trusted(cidr string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	deny := func(reason string) gin.HandlerFunc {
		return func(c *gin.Context) {
			log.Debug("access denied", zap.String("reason", reason), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatus(http.StatusForbidden)
		}
	}

	if cidr == "" {
		return deny("trusted subnet not configured")
	}
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		log.Warn("invalid trusted subnet", zap.String("cidr", cidr), zap.Error(err))
		return deny("invalid trusted subnet")
	}
	prefix = prefix.Masked()

	return func(c *gin.Context) {
		raw := c.GetHeader("X-Real-IP")
		if raw == "" {
			raw = c.ClientIP()
		}

		addr, err := netip.ParseAddr(raw)
		if err != nil {
			deny("invalid client ip")(c)
			return
		}
		if !prefix.Contains(addr.Unmap()) {
			log.Debug("access denied", zap.String("ip", addr.String()), zap.String("subnet", cidr))
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}
