package repository

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestParseObjectID_ValidHex(t *testing.T) {
	want := primitive.NewObjectID()

	got, ok := parseObjectID(want.Hex())
	if !ok {
		t.Fatal("parseObjectID should succeed for valid hex")
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseObjectID_Malformed(t *testing.T) {
	cases := []string{
		"",
		"not-an-object-id",
		"123",
		"zzzzzzzzzzzzzzzzzzzzzzzz", // 24文字だが16進ではない
	}

	for _, id := range cases {
		if _, ok := parseObjectID(id); ok {
			t.Errorf("parseObjectID(%q) should fail", id)
		}
	}
}

func TestToDocument_StructToBSONMap(t *testing.T) {
	type input struct {
		Name string `bson:"name"`
		Code string `bson:"code"`
	}

	doc, err := toDocument(input{Name: "Room A", Code: "A-101"})
	if err != nil {
		t.Fatalf("toDocument: %v", err)
	}

	if doc["name"] != "Room A" {
		t.Errorf("name = %v, want Room A", doc["name"])
	}
	if doc["code"] != "A-101" {
		t.Errorf("code = %v, want A-101", doc["code"])
	}
}

func TestToDocument_AllowsStampingAuditFields(t *testing.T) {
	type input struct {
		Name string `bson:"name"`
	}

	doc, err := toDocument(input{Name: "Room A"})
	if err != nil {
		t.Fatalf("toDocument: %v", err)
	}

	// 監査フィールドはキー単位で合成できる
	doc["created_by"] = "actor-1"
	doc["is_active"] = true

	if doc["name"] != "Room A" {
		t.Errorf("name = %v, original fields should be preserved", doc["name"])
	}
	if doc["created_by"] != "actor-1" || doc["is_active"] != true {
		t.Errorf("stamped fields missing: %v", doc)
	}
}

// --- モックデプロイメントに対するCRUDテスト ---

// roomRecord はCRUDテスト用のレコード型。
type roomRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Code      string             `bson:"code"`
	CreatedBy string             `bson:"created_by,omitempty"`
	DeletedBy string             `bson:"deleted_by,omitempty"`
	IsActive  bool               `bson:"is_active"`
}

type roomInput struct {
	Name string `bson:"name"`
	Code string `bson:"code"`
}

const testNS = "classbook.classrooms"

func newMockDeployment(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// startedCommand は記録済みイベントから指定コマンドを取り出す。
func startedCommand(mt *mtest.T, name string) bson.Raw {
	mt.Helper()
	for {
		ev := mt.GetStartedEvent()
		if ev == nil {
			mt.Fatalf("no %s command captured", name)
		}
		if ev.CommandName == name {
			return ev.Command
		}
	}
}

func insertedDocument(mt *mtest.T) bson.Raw {
	mt.Helper()
	docs, err := startedCommand(mt, "insert").LookupErr("documents")
	if err != nil {
		mt.Fatalf("insert command has no documents: %v", err)
	}
	elem, err := docs.Array().IndexErr(0)
	if err != nil {
		mt.Fatalf("insert command documents are empty: %v", err)
	}
	return elem.Value().Document()
}

func findFilter(mt *mtest.T) bson.Raw {
	mt.Helper()
	filter, err := startedCommand(mt, "find").LookupErr("filter")
	if err != nil {
		mt.Fatalf("find command has no filter: %v", err)
	}
	return filter.Document()
}

func updateStatement(mt *mtest.T) bson.Raw {
	mt.Helper()
	updates, err := startedCommand(mt, "update").LookupErr("updates")
	if err != nil {
		mt.Fatalf("update command has no updates: %v", err)
	}
	elem, err := updates.Array().IndexErr(0)
	if err != nil {
		mt.Fatalf("update command statements are empty: %v", err)
	}
	return elem.Value().Document()
}

func setDocument(mt *mtest.T, stmt bson.Raw) bson.Raw {
	mt.Helper()
	u, err := stmt.LookupErr("u")
	if err != nil {
		mt.Fatalf("update statement has no u: %v", err)
	}
	set, err := u.Document().LookupErr("$set")
	if err != nil {
		mt.Fatalf("update statement has no $set: %v", err)
	}
	return set.Document()
}

func assertRawString(mt *mtest.T, doc bson.Raw, key, want string) {
	mt.Helper()
	v, err := doc.LookupErr(key)
	if err != nil {
		mt.Errorf("%s is missing: %v", key, err)
		return
	}
	if got, ok := v.StringValueOK(); !ok || got != want {
		mt.Errorf("%s = %v, want %q", key, v, want)
	}
}

func assertRawBool(mt *mtest.T, doc bson.Raw, key string, want bool) {
	mt.Helper()
	v, err := doc.LookupErr(key)
	if err != nil {
		mt.Errorf("%s is missing: %v", key, err)
		return
	}
	if got, ok := v.BooleanOK(); !ok || got != want {
		mt.Errorf("%s = %v, want %v", key, v, want)
	}
}

func TestRepository_Create_StampsAuditFields(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("insert then read back", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")
		oid := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "name", Value: "Room A"},
				{Key: "code", Value: "A-101"},
				{Key: "created_by", Value: "admin-1"},
				{Key: "is_active", Value: true},
			}),
		)

		got, err := repo.Create(context.Background(), roomInput{Name: "Room A", Code: "A-101"}, "admin-1")
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if got == nil || got.ID != oid {
			mt.Fatalf("Create should return the stored record, got %+v", got)
		}

		// 挿入ドキュメントに監査フィールドがスタンプされていること
		doc := insertedDocument(mt)
		assertRawString(mt, doc, "created_by", "admin-1")
		assertRawBool(mt, doc, "is_active", true)
		if _, err := doc.LookupErr("created_at"); err != nil {
			mt.Error("created_at should be stamped on insert")
		}

		// 読み戻しはアクティブなレコードのみ対象
		assertRawBool(mt, findFilter(mt), "is_active", true)
	})
}

func TestRepository_FindByID_UnknownIDReturnsNil(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("no match yields nil without error", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch))

		got, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())
		if err != nil {
			mt.Fatalf("FindByID: %v", err)
		}
		if got != nil {
			mt.Errorf("got %+v, want nil", got)
		}

		assertRawBool(mt, findFilter(mt), "is_active", true)
	})
}

func TestRepository_SoftDeleteRoundTrip(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("deleted record hidden from FindByID but visible to FindByIDAny", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")
		oid := primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, testNS, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "name", Value: "Room A"},
				{Key: "deleted_by", Value: "admin-1"},
				{Key: "is_active", Value: false},
			}),
		)

		ok, err := repo.Delete(context.Background(), oid.Hex(), "admin-1")
		if err != nil || !ok {
			mt.Fatalf("Delete = (%v, %v), want (true, nil)", ok, err)
		}

		// 論理削除: 条件はアクティブなレコード、$setで無効化と実行者を記録
		stmt := updateStatement(mt)
		q, err := stmt.LookupErr("q")
		if err != nil {
			mt.Fatalf("update statement has no q: %v", err)
		}
		assertRawBool(mt, q.Document(), "is_active", true)
		set := setDocument(mt, stmt)
		assertRawBool(mt, set, "is_active", false)
		assertRawString(mt, set, "deleted_by", "admin-1")

		// 通常の参照からは見えなくなる
		found, err := repo.FindByID(context.Background(), oid.Hex())
		if err != nil {
			mt.Fatalf("FindByID: %v", err)
		}
		if found != nil {
			mt.Errorf("deleted record should be hidden, got %+v", found)
		}
		assertRawBool(mt, findFilter(mt), "is_active", true)

		// 監査上の直接参照では非アクティブのまま見える
		any, err := repo.FindByIDAny(context.Background(), oid.Hex())
		if err != nil {
			mt.Fatalf("FindByIDAny: %v", err)
		}
		if any == nil || any.IsActive {
			mt.Fatalf("FindByIDAny should return the inactive record, got %+v", any)
		}
		if _, err := findFilter(mt).LookupErr("is_active"); err == nil {
			mt.Error("FindByIDAny filter should not contain is_active")
		}
	})
}

func TestRepository_Delete_SecondCallReturnsFalse(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("idempotent delete", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		ok, err := repo.Delete(context.Background(), primitive.NewObjectID().Hex(), "admin-1")
		if err != nil {
			mt.Fatalf("Delete: %v", err)
		}
		if ok {
			mt.Error("delete of an already inactive record should report false")
		}
	})
}

func TestRepository_Update_UnknownIDReturnsNil(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("no match skips the read back", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		got, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), bson.M{"name": "Room B"}, "admin-1")
		if err != nil {
			mt.Fatalf("Update: %v", err)
		}
		if got != nil {
			mt.Errorf("got %+v, want nil", got)
		}

		// 部分更新にupdated_by・updated_atがスタンプされていること
		set := setDocument(mt, updateStatement(mt))
		assertRawString(mt, set, "name", "Room B")
		assertRawString(mt, set, "updated_by", "admin-1")
		if _, err := set.LookupErr("updated_at"); err != nil {
			mt.Error("updated_at should be stamped on update")
		}
	})
}

func TestRepository_MalformedIDNeverReachesStore(t *testing.T) {
	mt := newMockDeployment(t)

	mt.Run("update and delete short-circuit", func(mt *mtest.T) {
		repo := New[roomRecord](mt.DB, "classrooms")

		got, err := repo.Update(context.Background(), "not-an-object-id", bson.M{"name": "x"}, "admin-1")
		if err != nil || got != nil {
			mt.Errorf("Update = (%+v, %v), want (nil, nil)", got, err)
		}

		ok, err := repo.Delete(context.Background(), "not-an-object-id", "admin-1")
		if err != nil || ok {
			mt.Errorf("Delete = (%v, %v), want (false, nil)", ok, err)
		}

		if evs := mt.GetAllStartedEvents(); len(evs) != 0 {
			mt.Errorf("store should not be contacted, captured %d commands", len(evs))
		}
	})
}
