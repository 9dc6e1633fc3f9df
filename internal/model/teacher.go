package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Teacher は教員レコードを表す。
// EmailとIdentificationNumberはアクティブなレコード間で一意。
type Teacher struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Lastname             string             `bson:"lastname" json:"lastname"`
	IdentificationNumber string             `bson:"identification_number" json:"identification_number"`
	Email                string             `bson:"email" json:"email"`
	MobilePhone          string             `bson:"mobile_phone" json:"mobile_phone"`

	Audit `bson:",inline"`
}
