// Package metrics описывает метрики Prometheus сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics группирует счётчики сервиса. Регистрируются один раз на реестр,
// повторная регистрация в том же реестре вызывает панику.
type Metrics struct {
	// Rejections: отклонённые URL по коду причины (url_required, private_ip, ...)
	Rejections *prometheus.CounterVec
	// SlugsGenerated: выданные слаги по стратегии
	SlugsGenerated *prometheus.CounterVec
	// Exhaustions: исчерпанные попытки генерации по стратегии
	Exhaustions *prometheus.CounterVec
	// StoreConflicts: гонки за слаг, пойманные ограничением уникальности
	StoreConflicts prometheus.Counter
	// Redirects: переходы по результату (found, not_found, expired)
	Redirects *prometheus.CounterVec

	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkguard_url_rejections_total",
			Help: "Rejected URLs by reason code.",
		}, []string{"code"}),
		SlugsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkguard_slugs_generated_total",
			Help: "Slugs issued by strategy.",
		}, []string{"strategy"}),
		Exhaustions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkguard_slug_exhaustions_total",
			Help: "Slug generations that ran out of attempts.",
		}, []string{"strategy"}),
		StoreConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linkguard_store_conflicts_total",
			Help: "Stores rejected by the slug uniqueness constraint.",
		}),
		Redirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linkguard_redirects_total",
			Help: "Short link resolutions by outcome.",
		}, []string{"outcome"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.Rejections,
		m.SlugsGenerated,
		m.Exhaustions,
		m.StoreConflicts,
		m.Redirects,
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
	)
	return m
}

// Middleware считает запросы по шаблону маршрута, а не по пути,
// чтобы слаги не раздували число меток.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
