package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 提交次数
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of task submissions",
		},
		[]string{"kind", "result"}, // committed, incomplete, failed
	)

	// 草稿操作次数
	draftOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_operations_total",
			Help: "Total number of draft operations",
		},
		[]string{"operation", "result"},
	)

	// 完成状态查询结果
	completionResolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "completion_resolves_total",
			Help: "Total number of completion lookups by outcome",
		},
		[]string{"status"}, // completed, not_completed, undetermined
	)

	// 同一天出现多条完成记录
	duplicateSubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_submissions_observed_total",
			Help: "Number of lookups that found more than one submission for a task and date",
		},
	)

	// 实时推送连接数
	realtimeClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_clients",
			Help: "Number of connected real-time feed clients",
		},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)
)

var (
	once sync.Once
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(draftOperationsTotal)
	prometheus.MustRegister(completionResolvesTotal)
	prometheus.MustRegister(duplicateSubmissionsTotal)
	prometheus.MustRegister(realtimeClients)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)

	// Go 运行时指标,已注册时忽略错误
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordSubmission 记录提交结果
func RecordSubmission(kind, result string) {
	submissionsTotal.WithLabelValues(kind, result).Inc()
}

// RecordDraftOperation 记录草稿操作
func RecordDraftOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	draftOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordCompletionResolve 记录完成状态查询结果
func RecordCompletionResolve(status string) {
	completionResolvesTotal.WithLabelValues(status).Inc()
}

// RecordDuplicateSubmissions 记录一次重复完成记录的发现
func RecordDuplicateSubmissions() {
	duplicateSubmissionsTotal.Inc()
}

// SetRealtimeClients 更新实时推送连接数
func SetRealtimeClients(n int) {
	realtimeClients.Set(float64(n))
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}
