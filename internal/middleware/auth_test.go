package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hitoshi/classbook/internal/auth"
	"github.com/hitoshi/classbook/internal/model"
)

// --- モック定義 ---

type mockTokenValidator struct {
	validateFn func(token string) (*auth.Claims, error)
	callCount  int
}

func (m *mockTokenValidator) Validate(token string) (*auth.Claims, error) {
	m.callCount++
	if m.validateFn != nil {
		return m.validateFn(token)
	}
	return nil, auth.ErrTokenInvalid
}

type mockUserResolver struct {
	findUserFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserResolver) FindUser(ctx context.Context, id string) (*model.User, error) {
	if m.findUserFn != nil {
		return m.findUserFn(ctx, id)
	}
	return nil, nil
}

type mockAuthMetrics struct {
	reasons []string
}

func (m *mockAuthMetrics) RecordAuthFailure(reason string) {
	m.reasons = append(m.reasons, reason)
}

func activeUser() *model.User {
	user := &model.User{
		ID:   primitive.NewObjectID(),
		Role: model.RoleTeacher,
	}
	user.IsActive = true
	return user
}

func validClaims(subject string) *auth.Claims {
	c := &auth.Claims{}
	c.Subject = subject
	return c
}

func decodeErrorBody(t *testing.T, resp *http.Response) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

// --- テスト ---

func TestAuthMiddleware_ExemptPathBypassesValidation(t *testing.T) {
	tokens := &mockTokenValidator{}
	users := &mockUserResolver{}
	exempt := map[string]struct{}{"/auth/login": {}}

	mw := NewAuthMiddleware(tokens, users, exempt, nil)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	// トークンなしでも許可リストのパスは通過する
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should be called for exempt path")
	}
	if tokens.callCount != 0 {
		t.Errorf("validator call count = %d, want 0", tokens.callCount)
	}
}

func TestAuthMiddleware_ExemptPathIsExactMatch(t *testing.T) {
	tokens := &mockTokenValidator{}
	users := &mockUserResolver{}
	exempt := map[string]struct{}{"/auth/login": {}}

	mw := NewAuthMiddleware(tokens, users, exempt, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// プレフィックス一致では免除されない
	req := httptest.NewRequest(http.MethodGet, "/auth/login/extra", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusForbidden)
	}
}

func TestAuthMiddleware_MissingHeaderReturns403(t *testing.T) {
	metrics := &mockAuthMetrics{}
	mw := NewAuthMiddleware(&mockTokenValidator{}, &mockUserResolver{}, nil, metrics)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "no authorization header" {
		t.Errorf("message = %q, want %q", body.Message, "no authorization header")
	}
	if body.ErrorCode != model.ErrCodeForbidden {
		t.Errorf("error_code = %q, want %q", body.ErrorCode, model.ErrCodeForbidden)
	}
	if len(metrics.reasons) != 1 || metrics.reasons[0] != "missing_header" {
		t.Errorf("metrics reasons = %v, want [missing_header]", metrics.reasons)
	}
}

func TestAuthMiddleware_NonBearerSchemeReturns403(t *testing.T) {
	tokens := &mockTokenValidator{}
	mw := NewAuthMiddleware(tokens, &mockUserResolver{}, nil, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "invalid authentication scheme" {
		t.Errorf("message = %q, want %q", body.Message, "invalid authentication scheme")
	}

	// スキーム不一致の時点で拒否され、トークン検証は行われない
	if tokens.callCount != 0 {
		t.Errorf("validator call count = %d, want 0", tokens.callCount)
	}
}

func TestAuthMiddleware_ExpiredTokenReturns401(t *testing.T) {
	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			return nil, auth.ErrTokenExpired
		},
	}
	mw := NewAuthMiddleware(tokens, &mockUserResolver{}, nil, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "token expired" {
		t.Errorf("message = %q, want %q", body.Message, "token expired")
	}
}

func TestAuthMiddleware_InvalidTokenReturns401(t *testing.T) {
	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			return nil, auth.ErrTokenInvalid
		},
	}
	mw := NewAuthMiddleware(tokens, &mockUserResolver{}, nil, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "invalid token" {
		t.Errorf("message = %q, want %q", body.Message, "invalid token")
	}
}

func TestAuthMiddleware_UserNotFoundReturns401(t *testing.T) {
	subject := primitive.NewObjectID().Hex()
	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			return validClaims(subject), nil
		},
	}
	users := &mockUserResolver{
		findUserFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	mw := NewAuthMiddleware(tokens, users, nil, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "user not found" {
		t.Errorf("message = %q, want %q", body.Message, "user not found")
	}
}

func TestAuthMiddleware_InactiveUserReturns401(t *testing.T) {
	inactive := &model.User{ID: primitive.NewObjectID()}
	inactive.IsActive = false

	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			return validClaims(inactive.ID.Hex()), nil
		},
	}
	users := &mockUserResolver{
		findUserFn: func(ctx context.Context, id string) (*model.User, error) {
			return inactive, nil
		},
	}
	metrics := &mockAuthMetrics{}
	mw := NewAuthMiddleware(tokens, users, nil, metrics)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	body := decodeErrorBody(t, resp)
	if body.Message != "user is inactive" {
		t.Errorf("message = %q, want %q", body.Message, "user is inactive")
	}
	if len(metrics.reasons) != 1 || metrics.reasons[0] != "user_inactive" {
		t.Errorf("metrics reasons = %v, want [user_inactive]", metrics.reasons)
	}
}

func TestAuthMiddleware_ResolverErrorReturns500(t *testing.T) {
	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			return validClaims(primitive.NewObjectID().Hex()), nil
		},
	}
	users := &mockUserResolver{
		findUserFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, context.DeadlineExceeded
		},
	}
	mw := NewAuthMiddleware(tokens, users, nil, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	// 内部エラーの詳細はレスポンスに漏らさない
	body := decodeErrorBody(t, resp)
	if body.Message != "internal server error" {
		t.Errorf("message = %q, want %q", body.Message, "internal server error")
	}
}

func TestAuthMiddleware_SuccessInjectsUserIntoContext(t *testing.T) {
	user := activeUser()
	tokens := &mockTokenValidator{
		validateFn: func(token string) (*auth.Claims, error) {
			if token != "good-token" {
				t.Errorf("token = %q, want %q", token, "good-token")
			}
			return validClaims(user.ID.Hex()), nil
		},
	}
	users := &mockUserResolver{
		findUserFn: func(ctx context.Context, id string) (*model.User, error) {
			if id != user.ID.Hex() {
				t.Errorf("resolve id = %q, want %q", id, user.ID.Hex())
			}
			return user, nil
		},
	}
	mw := NewAuthMiddleware(tokens, users, nil, nil)

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/classrooms", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotUser == nil || gotUser.ID != user.ID {
		t.Error("resolved user should be injected into request context")
	}
}
