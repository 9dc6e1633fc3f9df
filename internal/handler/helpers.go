// Package handler はHTTP APIのハンドラー層を提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/classbook/internal/middleware"
	"github.com/hitoshi/classbook/internal/model"
)

// validate はリクエストボディ検証用のバリデーター。
// バリデーターはスレッドセーフのためパッケージ全体で共有する。
var validate = validator.New()

// defaultPageLimit は1回のリスト取得で返す最大件数のデフォルト。
const defaultPageLimit = 100

// decodeAndValidate はリクエストボディをJSONとしてデコードし、
// validateタグに基づく検証を行う。失敗時は400のAPIErrorを返す。
func decodeAndValidate(r *http.Request, dst any) *model.APIError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewBadRequestError("invalid request body", nil)
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return model.NewBadRequestError("validation failed", details)
		}
		return model.NewBadRequestError("validation failed", nil)
	}

	return nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// parsePagination はクエリパラメータからskip/limitを読み取る。
// 不正値・負値はデフォルトに丸める。
func parsePagination(r *http.Request) (skip, limit int64) {
	skip = 0
	limit = defaultPageLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	return skip, limit
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログのみに記録し、一般的な500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, apiErr)
		return
	}

	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// actorFromContext はリクエストコンテキストから解決済み利用者を取得する。
// 認証ミドルウェアの後段で呼ばれる前提だが、取得できない場合は401を書き込み
// nilを返す。
func actorFromContext(w http.ResponseWriter, r *http.Request) *model.User {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
		return nil
	}
	return user
}
