// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はHTTP APIのPrometheusメトリクスを収集する。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	requestDuration prometheus.Histogram
	authFailures    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classbook_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・ルート・ステータス別）",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classbook_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "classbook_auth_failures_total",
			Help: "認証失敗の合計数（原因別）",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.requestDuration,
		c.authFailures,
	)

	return c
}

// RecordRequest は1リクエストの処理結果を記録する。
// routeにはパスパラメータ展開前のルートパターンを渡すこと
// （IDの実値をラベルにするとカーディナリティが無限に増える）。
func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

// RecordAuthFailure は認証失敗を原因別に記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
