package middleware

import "net/http"

// NewSecurityHeadersMiddleware は全レスポンスにセキュリティ関連ヘッダーを付与する
// ミドルウェアを返す。成績・出席情報を含むJSON APIのため、中間キャッシュへの
// 保存も抑止する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}
