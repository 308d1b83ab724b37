// Package metrics 提供基于Prometheus的HTTP指标收集
//
// 指标设计：
// - http_requests_total（Counter）：按方法/路由/状态码统计请求总数
// - http_request_duration_seconds（Histogram）：请求耗时分布，自动计算P50/P90/P99
// - http_requests_in_flight（Gauge）：当前正在处理的请求数
//
// 指标通过/metrics端点暴露，由Prometheus Server定期抓取
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 指标注册中心
// 使用独立Registry而非默认全局Registry，便于测试时隔离
type Registry struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// NewRegistry 创建指标注册中心并注册所有指标
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	m := &Registry{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookshop",
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookshop",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时分布（秒）",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookshop",
			Name:      "http_requests_in_flight",
			Help:      "当前正在处理的请求数",
		}),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.requestsInFlight)
	return m
}

// GinMiddleware 指标收集中间件
// 路由标签使用c.FullPath()（如/api/v1/books/:id）而非原始URL，
// 防止路径参数导致标签基数爆炸
func (m *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestsInFlight.Inc()

		c.Next()

		m.requestsInFlight.Dec()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求
		}

		m.requestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// Handler 返回/metrics端点的HTTP处理器
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
