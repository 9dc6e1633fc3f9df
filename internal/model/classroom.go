package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Classroom は教室を表す。
// Codeはアクティブなレコード間で一意（ドメインサービス層でチェックする）。
type Classroom struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	Code string             `bson:"code" json:"code"`

	Audit `bson:",inline"`
}
