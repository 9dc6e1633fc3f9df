// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/classbook/internal/auth"
	"github.com/hitoshi/classbook/internal/classroom"
	"github.com/hitoshi/classbook/internal/config"
	"github.com/hitoshi/classbook/internal/course"
	"github.com/hitoshi/classbook/internal/database"
	"github.com/hitoshi/classbook/internal/formregister"
	"github.com/hitoshi/classbook/internal/handler"
	"github.com/hitoshi/classbook/internal/logger"
	"github.com/hitoshi/classbook/internal/metrics"
	"github.com/hitoshi/classbook/internal/middleware"
	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/repository"
	"github.com/hitoshi/classbook/internal/teacher"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込み前にもログを使えるようにデフォルトレベルで初期化する
	logger.SetupDefault(w, "info")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 設定されたレベルでロガーを再構成する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// MongoDB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()

	client, err := database.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.Close(ctx, client); err != nil {
			slog.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}()

	slog.Info("database connection established", slog.String("database", cfg.MongoDB))

	db := client.Database(cfg.MongoDB)

	// 2. リポジトリの初期化
	userRepo := repository.New[model.User](db, "users")
	classroomRepo := repository.New[model.Classroom](db, classroom.CollectionName)
	courseRepo := repository.New[model.Course](db, course.CollectionName)
	teacherRepo := repository.New[model.Teacher](db, teacher.CollectionName)
	formRepo := repository.New[model.FormRegister](db, formregister.CollectionName)

	// 3. トークンマネージャーと認証サービスの初期化
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	authService := auth.NewService(userRepo, tokenManager, auth.ServiceConfig{
		TokenTTL:   cfg.AccessTokenTTL,
		BcryptCost: cfg.BcryptCost,
	})

	// 4. ドメインサービスの初期化
	classroomService := classroom.NewService(classroomRepo)
	courseService := course.NewService(courseRepo)
	teacherService := teacher.NewService(teacherRepo)
	formService := formregister.NewService(formRepo)

	// 5. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 6. レートリミッターの初期化
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitLogin),
	)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		TokenValidator:    tokenManager,
		UserResolver:      authService,
		AuthExemptPaths:   cfg.AuthExemptPaths,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		RequestMetrics: collector,
		AuthMetrics:    collector,
		MetricsHandler: metrics.Handler(registry),

		AuthService:         authService,
		ClassroomService:    classroomService,
		CourseService:       courseService,
		TeacherService:      teacherService,
		FormRegisterService: formService,

		DatabasePinger: client,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
