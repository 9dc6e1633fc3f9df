package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Course は科目を表す。
// Codeはアクティブなレコード間で一意（ドメインサービス層でチェックする）。
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code" json:"code"`
	Description string             `bson:"description" json:"description"`

	Audit `bson:",inline"`
}
