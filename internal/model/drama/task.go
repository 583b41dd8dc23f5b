package drama

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 任务状态
const (
	StatusPending     = "pending"     // 已创建，等待调度
	StatusStoryboard  = "storyboard"  // 分镜生成中
	StatusGenerating  = "generating"  // 逐镜视频生成中
	StatusCompositing = "compositing" // 音画合成中
	StatusSucceeded   = "succeeded"
	StatusFailed      = "failed"
)

// Shot 分镜实体
// Index 从 1 开始连续编号，规划产物随流水线推进回填
type Shot struct {
	Index          int      `bson:"index" json:"index"`                                         // 全局序号（从1开始，连续）
	ShotType       string   `bson:"shot_type,omitempty" json:"shot_type,omitempty"`             // 景别
	Description    string   `bson:"description" json:"description"`                             // 画面描述
	Dialogue       string   `bson:"dialogue" json:"dialogue"`                                   // 台词原文（含说话人前缀）
	CharacterNames []string `bson:"character_names,omitempty" json:"character_names,omitempty"` // 出场角色
	T2VPrompt      string   `bson:"t2v_prompt" json:"t2v_prompt"`                               // 文生视频提示词

	// 规划产物
	VoiceID     string  `bson:"voice_id,omitempty" json:"voice_id,omitempty"`       // 选定音色
	Emotion     string  `bson:"emotion,omitempty" json:"emotion,omitempty"`         // 情绪标签
	Speed       int     `bson:"speed,omitempty" json:"speed,omitempty"`             // 合成语速
	MeasuredSec float64 `bson:"measured_sec,omitempty" json:"measured_sec,omitempty"` // 配音实测/估算时长
	TargetSec   float64 `bson:"target_sec,omitempty" json:"target_sec,omitempty"`   // 规划镜头时长
	APIDuration string  `bson:"api_duration,omitempty" json:"api_duration,omitempty"` // 生成 API 时长档位
	Silent      bool    `bson:"silent" json:"silent"`                               // 无台词镜头

	// 生成产物
	GenTaskID  string `bson:"gen_task_id,omitempty" json:"gen_task_id,omitempty"`   // 生成服务任务ID
	SegmentURL string `bson:"segment_url,omitempty" json:"segment_url,omitempty"`   // 分段在存储中的URL
}

// TaskOptions 任务级的合成选项
type TaskOptions struct {
	VoiceID      string         `bson:"voice_id,omitempty" json:"voice_id,omitempty"`             // 全局指定音色
	ShotVoiceIDs map[string]string `bson:"shot_voice_ids,omitempty" json:"shot_voice_ids,omitempty"` // 按镜头序号覆盖音色（键为序号字符串）
	BGMURL       string         `bson:"bgm_url,omitempty" json:"bgm_url,omitempty"`               // 背景音乐
	Transition   string         `bson:"transition,omitempty" json:"transition,omitempty"`         // 转场效果，开启后放弃逐镜精确对齐
	BurnSubtitle bool           `bson:"burn_subtitle" json:"burn_subtitle"`                       // 是否烧录字幕
	MaxShots     int            `bson:"max_shots,omitempty" json:"max_shots,omitempty"`           // 分镜数上限
}

// Task 短剧生成任务
type Task struct {
	ID      string      `bson:"id" json:"id"` // UUID
	Title   string      `bson:"title" json:"title"`
	Script  string      `bson:"script" json:"script"`
	Status  string      `bson:"status" json:"status"`
	Options TaskOptions `bson:"options" json:"options"`
	Shots   []Shot      `bson:"shots,omitempty" json:"shots,omitempty"`

	// 合成产物
	MergedURL   string  `bson:"merged_url,omitempty" json:"merged_url,omitempty"`     // 成片
	VoiceURL    string  `bson:"voice_url,omitempty" json:"voice_url,omitempty"`       // 整条配音轨
	DurationSec float64 `bson:"duration_sec,omitempty" json:"duration_sec,omitempty"` // 成片时长
	Error       string  `bson:"error,omitempty" json:"error,omitempty"`               // 失败原因

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Collection 返回集合名称
func (t *Task) Collection() string {
	return "drama_tasks"
}

// EnsureIndexes 创建和维护索引
func (t *Task) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(t.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_task_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// ShotVoiceOverride 查询镜头级音色覆盖，其次回退到任务级指定
func (o TaskOptions) ShotVoiceOverride(index int) string {
	if o.ShotVoiceIDs != nil {
		if v, ok := o.ShotVoiceIDs[strconv.Itoa(index)]; ok && v != "" {
			return v
		}
	}
	return o.VoiceID
}
