// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTPステータスコードとレスポンスボディ {message, error_code, details} を持ち、
// サービス層からハンドラー境界まで型を保ったまま伝搬する。
type APIError struct {
	Status  int            // HTTPステータスコード（レスポンスボディには含めない）
	Code    string         // エラーコード
	Message string         // エラーメッセージ
	Details map[string]any // エラーの付加情報
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	ErrCodeDuplicateResource   = "DUPLICATE_RESOURCE"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// NewNotFoundError はリソース未検出エラー（404）を生成する。
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Status:  404,
		Code:    ErrCodeResourceNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// NewDuplicateResourceError はリソース重複エラー（409）を生成する。
// アクティブなレコード間の論理キー重複を検出した場合に使用する。
func NewDuplicateResourceError(resource, field, value string) *APIError {
	return &APIError{
		Status:  409,
		Code:    ErrCodeDuplicateResource,
		Message: fmt.Sprintf("%s with %s %s already exists", resource, field, value),
		Details: map[string]any{"resource": resource, "field": field, "value": value},
	}
}

// NewUnauthorizedError は認証エラー（401）を生成する。
// トークンの不正・期限切れ、ユーザー未検出・無効化で使用する。
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Status:  401,
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: map[string]any{},
	}
}

// NewForbiddenError は認可エラー（403）を生成する。
// ロール不足、および認証情報の提示方法が不正な場合に使用する。
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Status:  403,
		Code:    ErrCodeForbidden,
		Message: message,
		Details: map[string]any{},
	}
}

// NewBadRequestError は入力不正エラー（400）を生成する。
func NewBadRequestError(message string, details map[string]any) *APIError {
	if details == nil {
		details = map[string]any{}
	}
	return &APIError{
		Status:  400,
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: details,
	}
}

// NewInternalServerError は内部エラー（500）を生成する。
// 内部の詳細はログのみに記録し、レスポンスには含めない。
func NewInternalServerError() *APIError {
	return &APIError{
		Status:  500,
		Code:    ErrCodeInternalServerError,
		Message: "internal server error",
		Details: map[string]any{},
	}
}
