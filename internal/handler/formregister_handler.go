package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classbook/internal/formregister"
	"github.com/hitoshi/classbook/internal/model"
)

// FormRegisterServiceInterface は出席記録ハンドラーが必要とするサービスインターフェース。
// 参照系は所有権チェックのため解決済み利用者そのものを受け取る。
type FormRegisterServiceInterface interface {
	Create(ctx context.Context, in formregister.CreateInput, actorID string) (*model.FormRegister, error)
	Get(ctx context.Context, id string, actor *model.User) (*model.FormRegister, error)
	List(ctx context.Context, actor *model.User, skip, limit int64) ([]model.FormRegister, error)
	Update(ctx context.Context, id string, in formregister.UpdateInput, actor *model.User) (*model.FormRegister, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// FormRegisterHandler は出席記録管理のHTTPハンドラー。
type FormRegisterHandler struct {
	service FormRegisterServiceInterface
}

// NewFormRegisterHandler はFormRegisterHandlerを生成する。
func NewFormRegisterHandler(service FormRegisterServiceInterface) *FormRegisterHandler {
	return &FormRegisterHandler{service: service}
}

// Create は出席記録を作成する。
// POST /form-registers
func (h *FormRegisterHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in formregister.CreateInput
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

// Get は出席記録詳細を取得する。教員は自分のエントリのみ参照できる。
// GET /form-registers/{id}
func (h *FormRegisterHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	form, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// List は出席記録の一覧を取得する。管理者は全件、教員は自分のエントリのみ。
// GET /form-registers
func (h *FormRegisterHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	skip, limit := parsePagination(r)

	forms, err := h.service.List(r.Context(), actor, skip, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, forms)
}

// Update は出席記録を更新する。教員は自分のエントリのみ更新できる。
// PUT /form-registers/{id}
func (h *FormRegisterHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromContext(w, r)
	if actor == nil {
		return
	}

	var in formregister.UpdateInput
	if apiErr := decodeAndValidate(r, &in); apiErr != nil {
		handleServiceError(w, r, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in, actor)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete は出席記録を論理削除する。
// DELETE /form-registers/{id}
func (h *FormRegisterHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
