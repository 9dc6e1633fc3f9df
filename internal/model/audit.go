package model

import "time"

// Audit は全エンティティに共通の監査フィールドを保持する。
// 各エンティティ型にインライン埋め込みし、スタンプ処理はリポジトリ層が一元的に行う。
// 論理削除は is_active を false にする遷移であり、レコードは物理削除されない。
type Audit struct {
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	CreatedBy string     `bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedBy string     `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	DeletedBy string     `bson:"deleted_by,omitempty" json:"deleted_by,omitempty"`
	IsActive  bool       `bson:"is_active" json:"is_active"`
}
