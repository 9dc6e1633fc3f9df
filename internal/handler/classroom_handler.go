package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classbook/internal/classroom"
	"github.com/hitoshi/classbook/internal/model"
)

// ClassroomServiceInterface は教室ハンドラーが必要とするサービスインターフェース。
type ClassroomServiceInterface interface {
	Create(ctx context.Context, in classroom.CreateInput, actorID string) (*model.Classroom, error)
	Get(ctx context.Context, id string) (*model.Classroom, error)
	List(ctx context.Context, skip, limit int64) ([]model.Classroom, error)
	Update(ctx context.Context, id string, in classroom.UpdateInput, actorID string) (*model.Classroom, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// ClassroomHandler は教室管理のHTTPハンドラー。
type ClassroomHandler struct {
	service ClassroomServiceInterface
}

// NewClassroomHandler はClassroomHandlerを生成する。
func NewClassroomHandler(service ClassroomServiceInterface) *ClassroomHandler {
	return &ClassroomHandler{service: service}
}

// Create は教室を作成する。
// POST /classrooms
func (h *ClassroomHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in classroom.CreateInput
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

// Get は教室詳細を取得する。
// GET /classrooms/{id}
func (h *ClassroomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// List はアクティブな教室の一覧を取得する。
// GET /classrooms
func (h *ClassroomHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := parsePagination(r)

	rooms, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// Update は教室を更新する。
// PUT /classrooms/{id}
func (h *ClassroomHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in classroom.UpdateInput
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

// Delete は教室を論理削除する。
// DELETE /classrooms/{id}
func (h *ClassroomHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
