// Package formregister は出席記録フォームのドメインサービスを提供する。
//
// 他のドメインと異なり参照系に所有権チェックがある。教員ロールの利用者は
// 自分の識別番号に一致するエントリのみ参照・更新でき、管理者は全件を扱える。
package formregister

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/repository"
)

// CollectionName は出席記録を格納するコレクション名。
const CollectionName = "form_registers"

const resourceName = "FormRegister"

// Repo は出席記録サービスが必要とするリポジトリインターフェース。
type Repo interface {
	Create(ctx context.Context, doc any, actorID string) (*model.FormRegister, error)
	FindByIDOrFail(ctx context.Context, id, resource string) (*model.FormRegister, error)
	FindAll(ctx context.Context, skip, limit int64) ([]model.FormRegister, error)
	Find(ctx context.Context, filter bson.M, skip, limit int64) ([]model.FormRegister, error)
	Update(ctx context.Context, id string, fields bson.M, actorID string) (*model.FormRegister, error)
	Delete(ctx context.Context, id string, actorID string) (bool, error)
}

// CreateInput は出席記録作成の入力。
type CreateInput struct {
	Day                  string  `json:"day" bson:"day" validate:"required,min=1,max=20"`
	Date                 string  `json:"date" bson:"date" validate:"required,min=1,max=20"`
	Shift                string  `json:"shift" bson:"shift" validate:"required,min=1,max=20"`
	Classroom            string  `json:"classroom" bson:"classroom" validate:"required,min=1,max=100"`
	Name                 string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Lastname             string  `json:"lastname" bson:"lastname" validate:"required,min=1,max=100"`
	IdentificationNumber string  `json:"identification_number" bson:"identification_number" validate:"required,min=5,max=20"`
	Module               string  `json:"module" bson:"module" validate:"required,min=1,max=100"`
	Content              string  `json:"content" bson:"content" validate:"required,min=1"`
	StartTime            string  `json:"start_time" bson:"start_time" validate:"required"`
	EndTime              string  `json:"end_time" bson:"end_time" validate:"required"`
	TotalHours           float64 `json:"total_hours" bson:"total_hours" validate:"required,gt=0"`
	CheckInTime          string  `json:"check_in_time" bson:"check_in_time,omitempty" validate:"omitempty"`
	Address              string  `json:"address" bson:"address,omitempty" validate:"omitempty,max=200"`
}

// UpdateInput は出席記録更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Day         *string  `json:"day" bson:"-" validate:"omitempty,min=1,max=20"`
	Date        *string  `json:"date" bson:"-" validate:"omitempty,min=1,max=20"`
	Shift       *string  `json:"shift" bson:"-" validate:"omitempty,min=1,max=20"`
	Classroom   *string  `json:"classroom" bson:"-" validate:"omitempty,min=1,max=100"`
	Module      *string  `json:"module" bson:"-" validate:"omitempty,min=1,max=100"`
	Content     *string  `json:"content" bson:"-" validate:"omitempty,min=1"`
	StartTime   *string  `json:"start_time" bson:"-" validate:"omitempty"`
	EndTime     *string  `json:"end_time" bson:"-" validate:"omitempty"`
	TotalHours  *float64 `json:"total_hours" bson:"-" validate:"omitempty,gt=0"`
	CheckInTime *string  `json:"check_in_time" bson:"-" validate:"omitempty"`
	Address     *string  `json:"address" bson:"-" validate:"omitempty,max=200"`
}

// Service は出席記録のCRUD操作と所有権チェックを提供する。
type Service struct {
	repo Repo
}

// NewService はServiceを生成する。
func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// Create は出席記録を作成する。
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*model.FormRegister, error) {
	return s.repo.Create(ctx, in, actorID)
}

// Get は出席記録をIDで取得する。教員ロールの場合は自分の識別番号に
// 一致するエントリのみ参照でき、それ以外は403エラーを返す。
func (s *Service) Get(ctx context.Context, id string, actor *model.User) (*model.FormRegister, error) {
	form, err := s.repo.FindByIDOrFail(ctx, id, resourceName)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(form, actor); err != nil {
		return nil, err
	}
	return form, nil
}

// List は出席記録を取得する。管理者は全件、教員は自分の識別番号に
// 一致するエントリのみを返す。
func (s *Service) List(ctx context.Context, actor *model.User, skip, limit int64) ([]model.FormRegister, error) {
	if actor.Role == model.RoleAdmin {
		return s.repo.FindAll(ctx, skip, limit)
	}
	filter := bson.M{
		"identification_number": actor.IdentificationNumber,
		"is_active":             true,
	}
	return s.repo.Find(ctx, filter, skip, limit)
}

// Update は所有権チェックのうえ出席記録を更新し、更新後のレコードを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actor *model.User) (*model.FormRegister, error) {
	current, err := s.repo.FindByIDOrFail(ctx, id, resourceName)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(current, actor); err != nil {
		return nil, err
	}

	fields := bson.M{}
	if in.Day != nil {
		fields["day"] = *in.Day
	}
	if in.Date != nil {
		fields["date"] = *in.Date
	}
	if in.Shift != nil {
		fields["shift"] = *in.Shift
	}
	if in.Classroom != nil {
		fields["classroom"] = *in.Classroom
	}
	if in.Module != nil {
		fields["module"] = *in.Module
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.StartTime != nil {
		fields["start_time"] = *in.StartTime
	}
	if in.EndTime != nil {
		fields["end_time"] = *in.EndTime
	}
	if in.TotalHours != nil {
		fields["total_hours"] = *in.TotalHours
	}
	if in.CheckInTime != nil {
		fields["check_in_time"] = *in.CheckInTime
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}

	updated, err := s.repo.Update(ctx, id, fields, actor.ID.Hex())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, model.NewNotFoundError(resourceName, id)
	}
	return updated, nil
}

// Delete は出席記録を論理削除する。ルート側で管理者ロールに制限されるため
// ここでは所有権チェックを行わない。
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

// checkOwnership は教員ロールの利用者が他人のエントリに触れていないか検証する。
func checkOwnership(form *model.FormRegister, actor *model.User) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if form.IdentificationNumber != actor.IdentificationNumber {
		return model.NewForbiddenError("you don't have permission to access this form register")
	}
	return nil
}

// compile-time interface check
var _ Repo = (*repository.Repository[model.FormRegister])(nil)
