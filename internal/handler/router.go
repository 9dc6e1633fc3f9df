package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classbook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenValidator    middleware.TokenValidator
	UserResolver      middleware.UserResolver
	AuthExemptPaths   map[string]struct{}
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	RequestMetrics middleware.RequestMetrics
	AuthMetrics    middleware.AuthMetrics
	MetricsHandler http.Handler

	// ドメインサービス
	AuthService         AuthServiceInterface
	ClassroomService    ClassroomServiceInterface
	CourseService       CourseServiceInterface
	TeacherService      TeacherServiceInterface
	FormRegisterService FormRegisterServiceInterface

	// 死活監視
	DatabasePinger DatabasePinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → SecurityHeaders → CORS → Logging → Metrics → Auth(許可リスト付き)
//
// ロールによるルート保護:
//   - 教室: 一覧のみ教員・管理者、それ以外は管理者のみ
//   - 科目・教員: 全操作が管理者のみ
//   - 出席記録: 削除のみ管理者、それ以外は教員・管理者
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.RequestMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.RequestMetrics))
	}
	r.Use(middleware.NewAuthMiddleware(deps.TokenValidator, deps.UserResolver, deps.AuthExemptPaths, deps.AuthMetrics))

	authHandler := NewAuthHandler(deps.AuthService)
	classroomHandler := NewClassroomHandler(deps.ClassroomService)
	courseHandler := NewCourseHandler(deps.CourseService)
	teacherHandler := NewTeacherHandler(deps.TeacherService)
	formHandler := NewFormRegisterHandler(deps.FormRegisterService)
	healthHandler := NewHealthHandler(deps.DatabasePinger)

	// --- 認証免除ルート（許可リストに含まれるパス） ---

	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)

		// /auth/me は許可リスト外のため認証ミドルウェアが適用される
		r.Get("/me", authHandler.Me)
	})

	r.Get("/health", healthHandler.Health)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// 認証済み利用者ごとのレート制限を追加で適用する
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 教室管理: 一覧のみ教員にも開放
		r.Route("/classrooms", func(r chi.Router) {
			r.With(middleware.RequireTeacherOrAdmin).Get("/", classroomHandler.List)
			r.With(middleware.RequireAdmin).Post("/", classroomHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", classroomHandler.Get)
				r.Put("/", classroomHandler.Update)
				r.Delete("/", classroomHandler.Delete)
			})
		})

		// 科目管理: 全操作が管理者のみ
		r.Route("/courses", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", courseHandler.List)
			r.Post("/", courseHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", courseHandler.Get)
				r.Put("/", courseHandler.Update)
				r.Delete("/", courseHandler.Delete)
			})
		})

		// 教員管理: 全操作が管理者のみ
		r.Route("/teachers", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/", teacherHandler.List)
			r.Post("/", teacherHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", teacherHandler.Get)
				r.Put("/", teacherHandler.Update)
				r.Delete("/", teacherHandler.Delete)
			})
		})

		// 出席記録管理: 削除のみ管理者、それ以外は教員・管理者
		// （教員の所有権チェックはサービス層で行う）
		r.Route("/form-registers", func(r chi.Router) {
			r.With(middleware.RequireTeacherOrAdmin).Get("/", formHandler.List)
			r.With(middleware.RequireTeacherOrAdmin).Post("/", formHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.With(middleware.RequireTeacherOrAdmin).Get("/", formHandler.Get)
				r.With(middleware.RequireTeacherOrAdmin).Put("/", formHandler.Update)
				r.With(middleware.RequireAdmin).Delete("/", formHandler.Delete)
			})
		})
	})

	return r
}
