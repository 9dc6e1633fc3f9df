package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/classbook/internal/auth"
	"github.com/hitoshi/classbook/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規アカウントを作成する。
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
	// Login は資格情報を検証しアクセストークンを発行する。
	Login(ctx context.Context, identificationNumber, password string) (string, *model.User, error)
}

// AuthHandler はアカウント登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	IdentificationNumber string `json:"identification_number" validate:"required"`
	Password             string `json:"password" validate:"required"`
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// registerResponse はアカウント登録成功時のレスポンス。
type registerResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Register はアカウント登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if apiErr := decodeAndValidate(r, &in); apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	user, err := h.service.Register(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		User:    user,
	})
}

// Login は資格情報を検証してアクセストークンを返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeAndValidate(r, &req); apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	token, _, err := h.service.Login(r.Context(), req.IdentificationNumber, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me は認証済み利用者自身の情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := actorFromContext(w, r)
	if user == nil {
		return
	}

	writeJSON(w, http.StatusOK, user)
}
