package drama

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"shotmove/internal/config"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/download"
	"shotmove/internal/pkg/kling"
	"shotmove/internal/pkg/retry"
)

// VideoGenerator 文生视频能力
type VideoGenerator interface {
	CreateTask(ctx context.Context, req *kling.CreateTaskRequest) (*kling.Task, error)
	WaitForTask(ctx context.Context, taskID string, pollInterval time.Duration) (*kling.Task, error)
}

// SegmentDownloader 分段下载能力
type SegmentDownloader interface {
	DownloadToFile(ctx context.Context, url, outputPath string) error
}

// GeneratedSegment 单镜生成结果
type GeneratedSegment struct {
	Index     int
	TaskID    string
	LocalPath string
	SourceURL string
}

// Generator 逐镜视频生成驱动
// 镜头串行提交：并发额度超限时等待释放重试，生成服务侧的损坏任务不会连锁扩散
type Generator struct {
	cfg        config.KlingConfig
	client     VideoGenerator
	downloader SegmentDownloader
}

// NewGenerator 创建生成驱动
func NewGenerator(cfg config.KlingConfig, client VideoGenerator, downloader SegmentDownloader) *Generator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 8 * time.Second
	}
	if cfg.SubmitDelay <= 0 {
		cfg.SubmitDelay = 5 * time.Second
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 30 * time.Second
	}
	if downloader == nil {
		downloader = download.NewDownloader(cfg.BaseURL)
	}

	return &Generator{
		cfg:        cfg,
		client:     client,
		downloader: downloader,
	}
}

// GenerateAll 按序生成全部镜头并下载到 workDir
// 任何一个镜头失败整批失败，绝不把残缺的分段集合交给合成阶段
func (g *Generator) GenerateAll(ctx context.Context, shots []drama.Shot, planned []PlannedShot, workDir string) ([]GeneratedSegment, error) {
	if len(shots) != len(planned) {
		return nil, fmt.Errorf("shots/plan length mismatch: %d vs %d", len(shots), len(planned))
	}

	segments := make([]GeneratedSegment, 0, len(shots))
	for i, shot := range shots {
		seg, err := g.generateShot(ctx, shot, planned[i], workDir)
		if err != nil {
			return nil, fmt.Errorf("generate shot %d: %w", shot.Index, err)
		}
		segments = append(segments, seg)

		// 给生成服务留出调度间隔，避免突发提交触发限流
		if i < len(shots)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.cfg.SubmitDelay):
			}
		}
	}

	return segments, nil
}

func (g *Generator) generateShot(ctx context.Context, shot drama.Shot, plan PlannedShot, workDir string) (GeneratedSegment, error) {
	var created *kling.Task

	// 并发额度随在途任务完成必然释放，无界线性退避等待
	submitPolicy := retry.Policy{Unbounded: true, BaseDelay: g.cfg.RetryBase}
	err := submitPolicy.Do(ctx, "submit_shot", func() error {
		task, submitErr := g.client.CreateTask(ctx, &kling.CreateTaskRequest{
			Prompt:   shot.T2VPrompt,
			Duration: plan.APIDuration,
		})
		if submitErr != nil {
			return submitErr
		}
		created = task
		return nil
	}, kling.IsResourceLimitError)
	if err != nil {
		return GeneratedSegment{}, fmt.Errorf("submit: %w", err)
	}

	log.Info().
		Int("shot", shot.Index).
		Str("task_id", created.TaskID).
		Str("duration", plan.APIDuration).
		Msg("镜头生成任务已提交，开始轮询")

	finished, err := g.client.WaitForTask(ctx, created.TaskID, g.cfg.PollInterval)
	if err != nil {
		return GeneratedSegment{}, fmt.Errorf("wait: %w", err)
	}

	localPath := filepath.Join(workDir, fmt.Sprintf("segment_%02d.mp4", shot.Index))
	if err := g.downloader.DownloadToFile(ctx, finished.VideoURL, localPath); err != nil {
		return GeneratedSegment{}, fmt.Errorf("download: %w", err)
	}

	return GeneratedSegment{
		Index:     shot.Index,
		TaskID:    created.TaskID,
		LocalPath: localPath,
		SourceURL: finished.VideoURL,
	}, nil
}
