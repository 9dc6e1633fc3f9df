package handler

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DatabasePinger はヘルスチェックが必要とするデータベース接続インターフェース。
// mongo.Clientの部分集合として定義する。
type DatabasePinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthHandler は死活監視エンドポイントのハンドラー。
type HealthHandler struct {
	db DatabasePinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db DatabasePinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health はサービスとデータベース接続の死活を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx, readpref.Primary()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "unhealthy",
			Database: "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Database: "ok",
	})
}
