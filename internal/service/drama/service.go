// Package drama 短剧生成服务
// 任务生命周期管理和"分镜 -> 配音规划 -> 逐镜生成 -> 音画合成"的流水线驱动
package drama

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"shotmove/internal/ai"
	"shotmove/internal/config"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/cache"
	"shotmove/internal/pkg/dramatools"
	"shotmove/internal/pkg/download"
	"shotmove/internal/pkg/ffmpeg"
	"shotmove/internal/pkg/id"
	"shotmove/internal/pkg/kling"
	"shotmove/internal/pkg/storage"
	"shotmove/internal/pkg/tts"
	dramarepo "shotmove/internal/repository/drama"
)

// Service 短剧生成服务
type Service struct {
	cfg        *config.Config
	repo       dramarepo.TaskRepository
	cache      *cache.RedisCache // 可选，nil 时跳过快照
	storage    storage.Storage
	aiClient   *ai.Client
	ffmpeg     *ffmpeg.Client
	planner    *Planner
	generator  *Generator
	compositor *Compositor
	downloader *download.Downloader
}

// NewService 创建短剧生成服务
// synthesizer 为 nil 时配音退化为估算时长加静音轨
func NewService(
	cfg *config.Config,
	repo dramarepo.TaskRepository,
	redisCache *cache.RedisCache,
	store storage.Storage,
	aiClient *ai.Client,
	synthesizer tts.Synthesizer,
) *Service {
	ffmpegClient := ffmpeg.NewClient()

	var classifier EmotionClassifier
	var voiceClassifier dramatools.VoiceClassifier
	if aiClient != nil {
		classifier = aiClient
		voiceClassifier = aiClient
	}

	selector := dramatools.NewVoiceSelector(voiceClassifier, tts.VoiceGenders())
	planner := NewPlanner(cfg.Pipeline, cfg.TTS.Speed, selector, synthesizer, classifier, ffmpegClient)

	klingClient := kling.NewClient(
		cfg.Kling.BaseURL, cfg.Kling.AccessKey, cfg.Kling.SecretKey,
		cfg.Kling.Model, cfg.Kling.Mode,
	)
	downloader := download.NewDownloader(cfg.Kling.BaseURL)

	return &Service{
		cfg:        cfg,
		repo:       repo,
		cache:      redisCache,
		storage:    store,
		aiClient:   aiClient,
		ffmpeg:     ffmpegClient,
		planner:    planner,
		generator:  NewGenerator(cfg.Kling, klingClient, downloader),
		compositor: NewCompositor(cfg.Pipeline, ffmpegClient),
		downloader: downloader,
	}
}

// ErrGenerationNotConfigured 视频生成凭证未配置，任务受理前拒绝
var ErrGenerationNotConfigured = errors.New("video generation not configured")

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title   string            `json:"title" binding:"required"`
	Script  string            `json:"script" binding:"required"`
	Options drama.TaskOptions `json:"options"`
}

// CreateTask 创建任务并异步启动流水线
// 生成凭证缺失时受理前直接拒绝，而不是让流水线跑完分镜和配音才在提交阶段失败
func (s *Service) CreateTask(ctx context.Context, req *CreateTaskRequest) (*drama.Task, error) {
	if err := s.cfg.ValidateKling(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationNotConfigured, err)
	}

	task := &drama.Task{
		ID:      id.New(),
		Title:   req.Title,
		Script:  req.Script,
		Status:  drama.StatusPending,
		Options: req.Options,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	// 流水线生命周期独立于请求
	go func() {
		runCtx := context.Background()
		if err := s.runPipeline(runCtx, task.ID); err != nil {
			log.Error().Err(err).Str("task_id", task.ID).Msg("短剧生成流水线失败")
		}
	}()

	return task, nil
}

// GetTask 查询任务，优先读状态快照缓存
func (s *Service) GetTask(ctx context.Context, taskID string) (*drama.Task, error) {
	if s.cache != nil {
		var cached drama.Task
		if err := s.cache.Get(ctx, cache.TaskCacheKey(taskID), &cached); err == nil {
			return &cached, nil
		}
	}

	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("task not found: %s", taskID)
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	s.snapshot(ctx, task)
	return task, nil
}

// ListTasks 分页查询任务
func (s *Service) ListTasks(ctx context.Context, status string, page, pageSize int) ([]*drama.Task, int64, error) {
	return s.repo.List(ctx, status, page, pageSize)
}

// DeleteTask 软删除任务并清掉状态快照
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.TaskCacheKey(taskID))
	}
	return nil
}

// snapshot 写任务状态快照，失败只记日志
func (s *Service) snapshot(ctx context.Context, task *drama.Task) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, cache.TaskCacheKey(task.ID), task, cache.TaskCacheTTL); err != nil {
		log.Debug().Err(err).Str("task_id", task.ID).Msg("写任务状态快照失败")
	}
}

// setStatus 更新任务状态并刷新快照
func (s *Service) setStatus(ctx context.Context, taskID, status, errorMessage string) {
	if err := s.repo.UpdateStatus(ctx, taskID, status, errorMessage); err != nil {
		log.Error().Err(err).Str("task_id", taskID).Str("status", status).Msg("更新任务状态失败")
		return
	}
	if task, err := s.repo.FindByID(ctx, taskID); err == nil {
		s.snapshot(ctx, task)
	}
}
