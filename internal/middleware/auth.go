package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/classbook/internal/auth"
	"github.com/hitoshi/classbook/internal/model"
)

// TokenValidator はベアラートークンの検証に必要なインターフェース。
// auth.TokenManagerの部分集合として定義する。
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// UserResolver はトークンのsubjectから利用者レコードを解決するインターフェース。
// is_activeでの絞り込みは行わず、無効化済みアカウントもそのまま返すこと。
type UserResolver interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
}

// AuthMetrics は認証失敗の計測に必要なインターフェース。nilでもよい。
type AuthMetrics interface {
	RecordAuthFailure(reason string)
}

// NewAuthMiddleware は許可リスト外の全リクエストを認証するミドルウェアを返す。
//
// 処理順序:
//  1. パスが許可リストに完全一致 → 認証せず通過
//  2. Authorizationヘッダーの欠如・Bearer以外のスキーム → 403
//  3. トークン検証失敗（不正・期限切れ） → 401（メッセージは区別する）
//  4. subjectの利用者が未検出 → 401、非アクティブ → 401
//  5. 解決済み利用者をリクエストコンテキストに注入して次へ
//
// 利用者解決時の予期しない内部エラーは詳細を漏らさず一般的な500にする。
func NewAuthMiddleware(tokens TokenValidator, users UserResolver, exemptPaths map[string]struct{}, metrics AuthMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. 許可リストのパスは認証を免除する
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			// 2. 認証情報の提示そのものの不備は403（トークン不正とは区別する）
			header := r.Header.Get("Authorization")
			if header == "" {
				recordAuthFailure(metrics, "missing_header")
				WriteErrorResponse(w, model.NewForbiddenError("no authorization header"))
				return
			}

			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				recordAuthFailure(metrics, "invalid_scheme")
				WriteErrorResponse(w, model.NewForbiddenError("invalid authentication scheme"))
				return
			}

			// 3. トークンの検証
			claims, err := tokens.Validate(parts[1])
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					recordAuthFailure(metrics, "token_expired")
					WriteErrorResponse(w, model.NewUnauthorizedError("token expired"))
					return
				}
				recordAuthFailure(metrics, "token_invalid")
				WriteErrorResponse(w, model.NewUnauthorizedError("invalid token"))
				return
			}

			// 4. 利用者レコードの解決
			user, err := users.FindUser(r.Context(), claims.Subject)
			if err != nil {
				slog.Error("failed to resolve user",
					slog.String("error", err.Error()),
					slog.String("subject", claims.Subject),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				recordAuthFailure(metrics, "user_not_found")
				WriteErrorResponse(w, model.NewUnauthorizedError("user not found"))
				return
			}
			if !user.IsActive {
				recordAuthFailure(metrics, "user_inactive")
				WriteErrorResponse(w, model.NewUnauthorizedError("user is inactive"))
				return
			}

			// 5. 解決済み利用者をコンテキストに注入
			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func recordAuthFailure(metrics AuthMetrics, reason string) {
	if metrics != nil {
		metrics.RecordAuthFailure(reason)
	}
}
