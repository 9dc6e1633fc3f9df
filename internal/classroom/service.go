// Package classroom は教室のドメインサービスを提供する。
package classroom

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/repository"
)

// CollectionName は教室レコードを格納するコレクション名。
const CollectionName = "classrooms"

// resourceName はエラーメッセージに使用するリソース名。
const resourceName = "Classroom"

// Repo は教室サービスが必要とするリポジトリインターフェース。
// repository.Repository[model.Classroom]の部分集合として定義する。
type Repo interface {
	Create(ctx context.Context, doc any, actorID string) (*model.Classroom, error)
	FindByIDOrFail(ctx context.Context, id, resource string) (*model.Classroom, error)
	FindAll(ctx context.Context, skip, limit int64) ([]model.Classroom, error)
	FindOne(ctx context.Context, filter bson.M) (*model.Classroom, error)
	Update(ctx context.Context, id string, fields bson.M, actorID string) (*model.Classroom, error)
	Delete(ctx context.Context, id string, actorID string) (bool, error)
}

// CreateInput は教室作成の入力。
type CreateInput struct {
	Name string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Code string `json:"code" bson:"code" validate:"required,min=1,max=20"`
}

// UpdateInput は教室更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name *string `json:"name" bson:"-" validate:"omitempty,min=1,max=100"`
	Code *string `json:"code" bson:"-" validate:"omitempty,min=1,max=20"`
}

// Service は教室のCRUD操作と重複コード検証を提供する。
type Service struct {
	repo Repo
}

// NewService はServiceを生成する。
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create は重複コード検証のうえ教室を作成する。
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*model.Classroom, error) {
	if err := s.checkDuplicateCode(ctx, in.Code, primitive.NilObjectID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in, actorID)
}

// Get は教室をIDで取得する。見つからない場合は404エラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Classroom, error) {
	return s.repo.FindByIDOrFail(ctx, id, resourceName)
}

// List はアクティブな教室をページネーション付きで取得する。
func (s *Service) List(ctx context.Context, skip, limit int64) ([]model.Classroom, error) {
	return s.repo.FindAll(ctx, skip, limit)
}

// Update は重複コード検証のうえ教室を更新し、更新後のレコードを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actorID string) (*model.Classroom, error) {
	current, err := s.repo.FindByIDOrFail(ctx, id, resourceName)
	if err != nil {
		return nil, err
	}

	if in.Code != nil && *in.Code != current.Code {
		if err := s.checkDuplicateCode(ctx, *in.Code, current.ID); err != nil {
			return nil, err
		}
	}

	fields := bson.M{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Code != nil {
		fields["code"] = *in.Code
	}

	updated, err := s.repo.Update(ctx, id, fields, actorID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, model.NewNotFoundError(resourceName, id)
	}
	return updated, nil
}

// Delete は教室を論理削除する。
func (s *Service) Delete(ctx context.Context, id string, actorID string) error {
	if _, err := s.repo.FindByIDOrFail(ctx, id, resourceName); err != nil {
		return err
	}

	ok, err := s.repo.Delete(ctx, id, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewNotFoundError(resourceName, id)
	}
	return nil
}

// checkDuplicateCode は同じコードを持つアクティブな教室の存在を検証する。
// 更新時は自分自身を除外する。チェックと挿入はアトミックではないため、
// 並行する作成者同士が同じコードで通過しうる（既知の制約）。
func (s *Service) checkDuplicateCode(ctx context.Context, code string, excludeID primitive.ObjectID) error {
	filter := bson.M{"code": code, "is_active": true}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	existing, err := s.repo.FindOne(ctx, filter)
	if err != nil {
		return err
	}
	if existing != nil {
		return model.NewDuplicateResourceError(resourceName, "code", code)
	}
	return nil
}

// compile-time interface check
var _ Repo = (*repository.Repository[model.Classroom])(nil)
