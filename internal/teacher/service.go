// Package teacher は教員レコードのドメインサービスを提供する。
package teacher

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/repository"
)

// CollectionName は教員レコードを格納するコレクション名。
const CollectionName = "teachers"

const resourceName = "Teacher"

// Repo は教員サービスが必要とするリポジトリインターフェース。
type Repo interface {
	Create(ctx context.Context, doc any, actorID string) (*model.Teacher, error)
	FindByIDOrFail(ctx context.Context, id, resource string) (*model.Teacher, error)
	FindAll(ctx context.Context, skip, limit int64) ([]model.Teacher, error)
	FindOne(ctx context.Context, filter bson.M) (*model.Teacher, error)
	Update(ctx context.Context, id string, fields bson.M, actorID string) (*model.Teacher, error)
	Delete(ctx context.Context, id string, actorID string) (bool, error)
}

// CreateInput は教員作成の入力。
type CreateInput struct {
	Name                 string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Lastname             string `json:"lastname" bson:"lastname" validate:"required,min=1,max=100"`
	IdentificationNumber string `json:"identification_number" bson:"identification_number" validate:"required,min=5,max=20"`
	Email                string `json:"email" bson:"email" validate:"required,email"`
	MobilePhone          string `json:"mobile_phone" bson:"mobile_phone" validate:"required,min=10,max=15"`
}

// UpdateInput は教員更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Name                 *string `json:"name" bson:"-" validate:"omitempty,min=1,max=100"`
	Lastname             *string `json:"lastname" bson:"-" validate:"omitempty,min=1,max=100"`
	IdentificationNumber *string `json:"identification_number" bson:"-" validate:"omitempty,min=5,max=20"`
	Email                *string `json:"email" bson:"-" validate:"omitempty,email"`
	MobilePhone          *string `json:"mobile_phone" bson:"-" validate:"omitempty,min=10,max=15"`
}

// Service は教員のCRUD操作と重複検証（メール・識別番号）を提供する。
type Service struct {
	repo Repo
}

// NewService はServiceを生成する。
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create は識別番号とメールの重複検証のうえ教員を作成する。
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*model.Teacher, error) {
	if err := s.checkDuplicate(ctx, "identification_number", in.IdentificationNumber, primitive.NilObjectID); err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, "email", in.Email, primitive.NilObjectID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in, actorID)
}

// Get は教員をIDで取得する。見つからない場合は404エラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Teacher, error) {
	return s.repo.FindByIDOrFail(ctx, id, resourceName)
}

// List はアクティブな教員をページネーション付きで取得する。
func (s *Service) List(ctx context.Context, skip, limit int64) ([]model.Teacher, error) {
	return s.repo.FindAll(ctx, skip, limit)
}

// Update は重複検証のうえ教員を更新し、更新後のレコードを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actorID string) (*model.Teacher, error) {
	current, err := s.repo.FindByIDOrFail(ctx, id, resourceName)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		if err := s.checkDuplicate(ctx, "email", *in.Email, current.ID); err != nil {
			return nil, err
		}
	}
	if in.IdentificationNumber != nil && *in.IdentificationNumber != current.IdentificationNumber {
		if err := s.checkDuplicate(ctx, "identification_number", *in.IdentificationNumber, current.ID); err != nil {
			return nil, err
		}
	}

	fields := bson.M{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Lastname != nil {
		fields["lastname"] = *in.Lastname
	}
	if in.IdentificationNumber != nil {
		fields["identification_number"] = *in.IdentificationNumber
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.MobilePhone != nil {
		fields["mobile_phone"] = *in.MobilePhone
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

// Delete は教員を論理削除する。
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

// checkDuplicate は指定フィールドが同じ値を持つアクティブな教員の存在を検証する。
// 更新時は自分自身を除外する。
func (s *Service) checkDuplicate(ctx context.Context, field, value string, excludeID primitive.ObjectID) error {
	filter := bson.M{field: value, "is_active": true}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	existing, err := s.repo.FindOne(ctx, filter)
	if err != nil {
		return err
	}
	if existing != nil {
		return model.NewDuplicateResourceError(resourceName, field, value)
	}
	return nil
}

// compile-time interface check
var _ Repo = (*repository.Repository[model.Teacher])(nil)
