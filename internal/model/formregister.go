package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// FormRegister は教員の出席記録（フォームレジスター）の1エントリを表す。
// IdentificationNumberは記録した教員の識別番号であり、教員ロールの
// 利用者は自分の識別番号に一致するエントリのみ参照できる。
type FormRegister struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Day                  string             `bson:"day" json:"day"`
	Date                 string             `bson:"date" json:"date"`
	Shift                string             `bson:"shift" json:"shift"`
	Classroom            string             `bson:"classroom" json:"classroom"`
	Name                 string             `bson:"name" json:"name"`
	Lastname             string             `bson:"lastname" json:"lastname"`
	IdentificationNumber string             `bson:"identification_number" json:"identification_number"`
	Module               string             `bson:"module" json:"module"`
	Content              string             `bson:"content" json:"content"`
	StartTime            string             `bson:"start_time" json:"start_time"`
	EndTime              string             `bson:"end_time" json:"end_time"`
	TotalHours           float64            `bson:"total_hours" json:"total_hours"`
	CheckInTime          string             `bson:"check_in_time,omitempty" json:"check_in_time,omitempty"`
	Address              string             `bson:"address,omitempty" json:"address,omitempty"`

	Audit `bson:",inline"`
}
