// Package config は環境変数からのアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	MongoURI string
	MongoDB  string

	// Token
	JWTSecret      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration

	// Credential hashing
	BcryptCost int

	// Auth
	AuthExemptPaths map[string]struct{}

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitLogin   int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// defaultExemptPaths は認証を免除するパスのデフォルト集合。
// ログイン・登録とヘルスチェック・メトリクスのエンドポイントを含む。
const defaultExemptPaths = "/auth/login,/auth/register,/health,/metrics"

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（本番では環境変数のみ）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。存在しなくてもエラーにしない。
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.MongoURI = getEnvString("MONGO_URI", "mongodb://localhost:27017")
	cfg.MongoDB = getEnvString("MONGO_DB", "classbook")
	cfg.JWTAlgorithm = getEnvString("JWT_ALGORITHM", "HS256")
	cfg.AccessTokenTTL = time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 120)) * time.Minute
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	cfg.AuthExemptPaths = parsePathSet(getEnvString("AUTH_EXEMPT_PATHS", defaultExemptPaths))

	return cfg, nil
}

// parsePathSet はカンマ区切りのパス一覧を完全一致判定用の集合に変換する。
func parsePathSet(raw string) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			paths[p] = struct{}{}
		}
	}
	return paths
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
