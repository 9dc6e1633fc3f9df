// Package repository はMongoDBコレクションに対する汎用CRUD操作を提供する。
//
// Repository[T]は1コレクションに束縛され、全エンティティ種別に共通の
// 論理削除・監査スタンプ・ID検証を一箇所で実装する。レコードの状態は
// 「存在しない → アクティブ → 非アクティブ」の一方向にのみ遷移し、
// 非アクティブは終端状態となる（再アクティブ化の操作は存在しない）。
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/classbook/internal/model"
)

// Repository はレコード型Tをドキュメントとして格納する1コレクションの
// 汎用リポジトリ。各ドメインサービスが自分のレコード型とコレクション名で
// インスタンス化して使用する。
type Repository[T any] struct {
	coll *mongo.Collection
}

// New は指定コレクションに束縛されたRepositoryを生成する。
func New[T any](db *mongo.Database, collection string) *Repository[T] {
	return &Repository[T]{coll: db.Collection(collection)}
}

// Create はドキュメントを挿入し、格納後のレコードを読み戻して返す。
// created_by・created_at・is_active=true をリポジトリ側でスタンプする。
// docには監査フィールドを含まないbsonタグ付き構造体を渡す。
func (r *Repository[T]) Create(ctx context.Context, doc any, actorID string) (*T, error) {
	data, err := toDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	data["created_at"] = time.Now().UTC()
	data["created_by"] = actorID
	data["is_active"] = true

	res, err := r.coll.InsertOne(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}

	// 入力のエコーではなく、挿入後のレコードを読み戻して返す
	return r.FindByID(ctx, oid.Hex())
}

// FindByID はアクティブなレコードをIDで取得する。
// IDが不正な形式の場合、および該当レコードがない場合はnilを返す
// （この層では不正な入力はエラーではない）。
func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	return r.FindOne(ctx, bson.M{"_id": oid, "is_active": true})
}

// FindByIDAny はis_activeのフィルタなしでレコードをIDで取得する。
// 非アクティブ化されたユーザーの判別など、監査上の直接参照に使用する。
func (r *Repository[T]) FindByIDAny(ctx context.Context, id string) (*T, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}
	return r.FindOne(ctx, bson.M{"_id": oid})
}

// FindByIDOrFail はFindByIDを呼び、見つからない場合は
// *model.APIError（404 RESOURCE_NOT_FOUND）を返す。
func (r *Repository[T]) FindByIDOrFail(ctx context.Context, id, resource string) (*T, error) {
	doc, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, model.NewNotFoundError(resource, id)
	}
	return doc, nil
}

// FindOne は任意のフィルタで1レコードを取得する。見つからない場合はnilを返す。
// 重複キーチェックやログイン時の検索など、is_activeフィルタを呼び出し側が
// 制御したい場合に使用する。
func (r *Repository[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

// FindAll はアクティブなレコードをストアの自然順で取得する。
// skip/limitによるオフセットページネーションのみで、総件数は返さない。
func (r *Repository[T]) FindAll(ctx context.Context, skip, limit int64) ([]T, error) {
	return r.Find(ctx, bson.M{"is_active": true}, skip, limit)
}

// Find は任意のフィルタでレコードを取得する。
func (r *Repository[T]) Find(ctx context.Context, filter bson.M, skip, limit int64) ([]T, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	return docs, nil
}

// Update は{_id, is_active: true}に一致するレコードへ部分更新を適用し、
// 更新後のレコードを読み戻して返す。updated_by・updated_atをスタンプする。
// 一致するレコードがない場合はnilを返す（存在しないのか既に非アクティブ
// なのかは呼び出し側から区別できない）。
func (r *Repository[T]) Update(ctx context.Context, id string, fields bson.M, actorID string) (*T, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, nil
	}

	fields["updated_at"] = time.Now().UTC()
	fields["updated_by"] = actorID

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "is_active": true},
		bson.M{"$set": fields},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}

	return r.FindByID(ctx, id)
}

// Delete はレコードを論理削除する（is_active=false + deleted_byのスタンプ）。
// ちょうど1件が一致したかどうかを返す。2回目の呼び出しはfalseを返すだけで
// エラーにはならない（冪等）。
func (r *Repository[T]) Delete(ctx context.Context, id string, actorID string) (bool, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "deleted_by": actorID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}

	return res.MatchedCount > 0, nil
}

// parseObjectID は文字列IDを検証してObjectIDに変換する。
func parseObjectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// toDocument は構造体をbsonドキュメントに変換する。
// 監査フィールドのスタンプをキー単位で合成するための中間表現。
func toDocument(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var data bson.M
	if err := bson.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
