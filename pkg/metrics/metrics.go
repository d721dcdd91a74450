// Package metrics 提供Prometheus监控指标
//
// # 指标类型速查
//
//   - Counter: 只增不减(结算次数、预约副本数)
//   - Gauge: 可增可减(正在处理的结算数、熔断器状态)
//   - Histogram: 分布统计(结算耗时、HTTP耗时)
//
// # 命名规范
//
//	<业务>_<对象>_<单位>，计数器以_total结尾，耗时以_seconds结尾
//
// 所有指标在包加载时注册到默认Registry，通过/metrics暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =========================================
// HTTP指标
// =========================================

var (
	// HTTPRequestsTotal HTTP请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)
)

// =========================================
// 借阅业务指标
// =========================================

// 结算结果标签取值
const (
	ResultSuccess           = "success"
	ResultInsufficientStock = "insufficient_stock"
	ResultConflict          = "conflict"
	ResultInvalid           = "invalid"
	ResultError             = "error"
)

var (
	// CheckoutsTotal 结算次数（按结果）
	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_checkouts_total",
			Help: "借书车结算次数",
		},
		[]string{"result"},
	)

	// CheckoutDuration 结算耗时（含等待行锁）
	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "library_checkout_duration_seconds",
			Help:    "借书车结算耗时（秒）",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// CheckoutsInProgress 正在执行的结算数
	CheckoutsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_checkouts_in_progress",
			Help: "正在执行的结算数",
		},
	)

	// CopiesReservedTotal 被预约的副本总数
	CopiesReservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_copies_reserved_total",
			Help: "结算成功后进入RESERVED的副本数",
		},
	)

	// CartMutationsTotal 借书车变更次数
	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_cart_mutations_total",
			Help: "借书车变更次数",
		},
		[]string{"action"}, // add/update/remove/clear
	)

	// TicketTransitionsTotal 借阅单状态流转次数
	TicketTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_ticket_transitions_total",
			Help: "借阅单状态流转次数",
		},
		[]string{"to"},
	)

	// TicketsExpiredTotal 超时未取被自动取消的借阅单数
	TicketsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "library_tickets_expired_total",
			Help: "超时未取书被自动取消的借阅单数",
		},
	)
)

// =========================================
// 基础设施指标
// =========================================

var (
	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 熔断器请求数
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"}, // success/failure/rejected
	)

	// MessagesPublishedTotal 消息发布数
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
)

// =========================================
// 辅助函数
// =========================================

// IncCounterVec 按标签递增
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// SetGaugeVec 按标签设置Gauge
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 按标签记录耗时
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
