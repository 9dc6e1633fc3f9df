package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/teacher"
)

// TeacherServiceInterface は教員ハンドラーが必要とするサービスインターフェース。
type TeacherServiceInterface interface {
	Create(ctx context.Context, in teacher.CreateInput, actorID string) (*model.Teacher, error)
	Get(ctx context.Context, id string) (*model.Teacher, error)
	List(ctx context.Context, skip, limit int64) ([]model.Teacher, error)
	Update(ctx context.Context, id string, in teacher.UpdateInput, actorID string) (*model.Teacher, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// TeacherHandler は教員管理のHTTPハンドラー。
type TeacherHandler struct {
	service TeacherServiceInterface
}

// NewTeacherHandler はTeacherHandlerを生成する。
func NewTeacherHandler(service TeacherServiceInterface) *TeacherHandler {
	return &TeacherHandler{service: service}
}

// Create は教員を作成する。
// POST /teachers
func (h *TeacherHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in teacher.CreateInput
	if apiErr := decodeAndValidate(r, &in); apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), in, actor.ID.Hex())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Get は教員詳細を取得する。
// GET /teachers/{id}
func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// List はアクティブな教員の一覧を取得する。
// GET /teachers
func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	teachers, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, teachers)
}

// Update は教員を更新する。
// PUT /teachers/{id}
func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in teacher.UpdateInput
	if apiErr := decodeAndValidate(r, &in); apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in, actor.ID.Hex())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete は教員を論理削除する。
// DELETE /teachers/{id}
func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), actor.ID.Hex()); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
