package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role はプラットフォーム利用者のロールを表す。
type Role string

const (
	// RoleAdmin は管理者ロール。全エンティティの管理操作が可能。
	RoleAdmin Role = "admin"
	// RoleTeacher は教員ロール。出席記録の参照・登録が可能。
	RoleTeacher Role = "teacher"
)

// Valid はロールが定義済みのものかどうかを返す。
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User はプラットフォームの利用者アカウントを表す。
// Passwordはbcryptハッシュを保持し、JSONには含めない。
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Lastname             string             `bson:"lastname" json:"lastname"`
	IdentificationNumber string             `bson:"identification_number" json:"identification_number"`
	Email                string             `bson:"email" json:"email"`
	Role                 Role               `bson:"role" json:"role"`
	Password             string             `bson:"password" json:"-"`

	Audit `bson:",inline"`
}
