package drama

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shotmove/internal/model/drama"
)

// TaskRepository 任务仓库接口
type TaskRepository interface {
	Create(ctx context.Context, task *drama.Task) error
	FindByID(ctx context.Context, id string) (*drama.Task, error)
	List(ctx context.Context, status string, page, pageSize int) ([]*drama.Task, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id, status, errorMessage string) error
	UpdateShots(ctx context.Context, id string, shots []drama.Shot) error
	Delete(ctx context.Context, id string) error
}

// TaskRepo 任务仓库实现
type TaskRepo struct {
	coll *mongo.Collection
}

// NewTaskRepo 创建任务仓库
func NewTaskRepo(db *mongo.Database) *TaskRepo {
	var t drama.Task
	return &TaskRepo{coll: db.Collection(t.Collection())}
}

// Create 创建任务
func (r *TaskRepo) Create(ctx context.Context, task *drama.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = drama.StatusPending
	}
	_, err := r.coll.InsertOne(ctx, task)
	return err
}

// FindByID 根据ID查询任务
func (r *TaskRepo) FindByID(ctx context.Context, id string) (*drama.Task, error) {
	var task drama.Task
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "deleted_at": nil}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

// List 分页查询任务，status 为空时查全部
func (r *TaskRepo) List(ctx context.Context, status string, page, pageSize int) ([]*drama.Task, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := bson.M{"deleted_at": nil}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var tasks []*drama.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update 更新任务字段
func (r *TaskRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": updates})
	return err
}

// UpdateStatus 更新任务状态，失败时记录原因
func (r *TaskRepo) UpdateStatus(ctx context.Context, id, status, errorMessage string) error {
	updates := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if errorMessage != "" {
		updates["error"] = errorMessage
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": updates})
	return err
}

// UpdateShots 整体回写分镜列表（规划/生成产物随流水线推进更新）
func (r *TaskRepo) UpdateShots(ctx context.Context, id string, shots []drama.Shot) error {
	return r.Update(ctx, id, map[string]interface{}{"shots": shots})
}

// Delete 软删除任务
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"deleted_at": now,
		"updated_at": now,
	}})
	return err
}
