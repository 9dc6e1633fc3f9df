package middleware

import (
	"net/http"

	"github.com/hitoshi/classbook/internal/model"
)

// RequireRole は解決済み利用者のロールが指定集合に含まれることを要求する
// ミドルウェアを返す。認証ミドルウェアの後段に配置すること。
// ガードはストアには一切触れず、コンテキスト上のアイデンティティのみを見る。
func RequireRole(roles ...model.Role) func(next http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, model.NewUnauthorizedError("authentication required"))
				return
			}

			if _, ok := allowed[user.Role]; !ok {
				WriteErrorResponse(w, model.NewForbiddenError("you don't have sufficient privileges"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin は管理者ロールのみを許可する。
var RequireAdmin = RequireRole(model.RoleAdmin)

// RequireTeacherOrAdmin は教員ロールと管理者ロールを許可する。
var RequireTeacherOrAdmin = RequireRole(model.RoleTeacher, model.RoleAdmin)
