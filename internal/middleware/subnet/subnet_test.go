package subnet

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter(cidr string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Trusted(cidr, nil), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestTrusted(t *testing.T) {
	tests := []struct {
		name       string
		cidr       string
		realIP     string
		remoteAddr string
		want       int
	}{
		{name: "адрес в подсети", cidr: "192.168.1.0/24", realIP: "192.168.1.10", want: http.StatusOK},
		{name: "адрес вне подсети", cidr: "192.168.1.0/24", realIP: "10.0.0.1", want: http.StatusForbidden},
		{name: "подсеть не задана", cidr: "", realIP: "192.168.1.10", want: http.StatusForbidden},
		{name: "невалидная подсеть", cidr: "192.168.1.0/99", realIP: "192.168.1.10", want: http.StatusForbidden},
		{name: "невалидный X-Real-IP", cidr: "192.168.1.0/24", realIP: "not-an-ip", want: http.StatusForbidden},
		{name: "без заголовка берётся адрес соединения", cidr: "127.0.0.0/8", remoteAddr: "127.0.0.1:5555", want: http.StatusOK},
		{name: "ipv6 подсеть", cidr: "fd00::/8", realIP: "fd00::1", want: http.StatusOK},
		{name: "ipv4 в ipv6 записи", cidr: "10.0.0.0/8", realIP: "::ffff:10.1.2.3", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}
			w := httptest.NewRecorder()

			newRouter(tt.cidr).ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
