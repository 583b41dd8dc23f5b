package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"shotmove/internal/model/drama"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时调用一次
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&drama.Task{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
