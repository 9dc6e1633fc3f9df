package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestMetrics はリクエスト計測に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type RequestMetrics interface {
	RecordRequest(method, route string, status int, duration time.Duration)
}

// NewMetricsMiddleware はリクエストの件数とレイテンシを記録するミドルウェアを返す。
// ルートラベルにはchiのルートパターンを使用する（パスの実値は使わない）。
func NewMetricsMiddleware(collector RequestMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			collector.RecordRequest(r.Method, route, rec.statusCode, time.Since(start))
		})
	}
}
