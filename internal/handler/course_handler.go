package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classbook/internal/course"
	"github.com/hitoshi/classbook/internal/model"
)

// CourseServiceInterface は科目ハンドラーが必要とするサービスインターフェース。
type CourseServiceInterface interface {
	Create(ctx context.Context, in course.CreateInput, actorID string) (*model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, skip, limit int64) ([]model.Course, error)
	Update(ctx context.Context, id string, in course.UpdateInput, actorID string) (*model.Course, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// CourseHandler は科目管理のHTTPハンドラー。
type CourseHandler struct {
	service CourseServiceInterface
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(service CourseServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

// Create は科目を作成する。
// POST /courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in course.CreateInput
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

// Get は科目詳細を取得する。
// GET /courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// List はアクティブな科目の一覧を取得する。
// GET /courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	courses, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, courses)
}

// Update は科目を更新する。
// PUT /courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in course.UpdateInput
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

// Delete は科目を論理削除する。
// DELETE /courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
