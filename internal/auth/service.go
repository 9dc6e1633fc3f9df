package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hitoshi/classbook/internal/model"
	"github.com/hitoshi/classbook/internal/repository"
)

// UserRepository はアカウントサービスが必要とするリポジトリインターフェース。
// repository.Repository[model.User]の部分集合として定義する。
type UserRepository interface {
	Create(ctx context.Context, doc any, actorID string) (*model.User, error)
	FindOne(ctx context.Context, filter bson.M) (*model.User, error)
	FindByIDAny(ctx context.Context, id string) (*model.User, error)
}

// ServiceConfig はアカウントサービスの設定。
type ServiceConfig struct {
	TokenTTL   time.Duration // 発行するアクセストークンの有効期間
	BcryptCost int           // パスワードハッシュのコストファクター
}

// Service はアカウント登録・ログイン・利用者解決を提供する。
type Service struct {
	users  UserRepository
	tokens *TokenManager
	config ServiceConfig
}

// NewService はServiceを生成する。
func NewService(users UserRepository, tokens *TokenManager, config ServiceConfig) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		config: config,
	}
}

// RegisterInput はアカウント登録の入力。
type RegisterInput struct {
	Name                 string     `json:"name" bson:"name" validate:"required,max=100"`
	Lastname             string     `json:"lastname" bson:"lastname" validate:"required,max=100"`
	IdentificationNumber string     `json:"identification_number" bson:"identification_number" validate:"required,min=5,max=20"`
	Email                string     `json:"email" bson:"email" validate:"required,email"`
	Role                 model.Role `json:"role" bson:"role" validate:"required,oneof=admin teacher"`
	Password             string     `json:"password" bson:"password" validate:"required,min=8"`
}

// Register はパスワードをハッシュ化して新規アカウントを作成する。
// 登録はシステム起点の操作としてcreated_by="system"をスタンプする。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}
	in.Password = hash

	return s.users.Create(ctx, in, "system")
}

// Login は識別番号とパスワードで利用者を認証し、アクセストークンを発行する。
// 資格情報の不一致はいずれも同一の401エラーになる（存在の有無を漏らさない）。
// is_activeでの絞り込みは行わず、無効化されたアカウントの拒否は
// 認証ミドルウェアに委ねる。
func (s *Service) Login(ctx context.Context, identificationNumber, password string) (string, *model.User, error) {
	user, err := s.users.FindOne(ctx, bson.M{"identification_number": identificationNumber})
	if err != nil {
		return "", nil, err
	}
	if user == nil || !VerifyPassword(password, user.Password) {
		return "", nil, model.NewUnauthorizedError("invalid credentials")
	}

	token, err := s.tokens.Issue(user, s.config.TokenTTL)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// FindUser は利用者をIDで解決する。is_activeのフィルタは行わないため、
// 認証ミドルウェアは未検出と無効化済みを区別してエラーにできる。
// IDが不正な形式の場合はnilを返す。
func (s *Service) FindUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.FindByIDAny(ctx, id)
}

// compile-time interface check
var _ UserRepository = (*repository.Repository[model.User])(nil)
