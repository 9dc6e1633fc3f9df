// Package database はMongoDB接続のライフサイクル管理を提供する。
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// serverSelectionTimeout はサーバー選択のタイムアウト。
// ストアが落ちている場合にリクエストを無期限に待たせず速やかに失敗させる。
const serverSelectionTimeout = 5 * time.Second

// Connect はMongoDBクライアントを生成し、pingで到達性を確認する。
// pingが成功するまでプロセスをreadyとみなしてはならない。
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		// 接続に失敗したクライアントは破棄する
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// Close はMongoDB接続を切断する。プロセス終了時に1回呼ぶ。
func Close(ctx context.Context, client *mongo.Client) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}
