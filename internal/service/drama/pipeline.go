package drama

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"shotmove/internal/ai/chain"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/storage"
)

const presignExpiry = 24 * time.Hour

// runPipeline 驱动单个任务走完整条流水线
// 阶段: 分镜 -> 配音规划 -> 逐镜生成 -> 音画合成 -> 产物上传
func (s *Service) runPipeline(ctx context.Context, taskID string) error {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("load task: %w", err)
	}

	workDir, err := s.makeWorkDir(taskID)
	if err != nil {
		s.setStatus(ctx, taskID, drama.StatusFailed, err.Error())
		return err
	}
	// 工作目录只存中间产物，最终产物已上传存储
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			log.Warn().Err(rmErr).Str("dir", workDir).Msg("清理工作目录失败")
		}
	}()

	if err := s.run(ctx, task, workDir); err != nil {
		s.setStatus(ctx, taskID, drama.StatusFailed, err.Error())
		return err
	}

	s.setStatus(ctx, taskID, drama.StatusSucceeded, "")
	log.Info().Str("task_id", taskID).Msg("短剧生成完成")
	return nil
}

func (s *Service) run(ctx context.Context, task *drama.Task, workDir string) error {
	// 1. 分镜
	s.setStatus(ctx, task.ID, drama.StatusStoryboard, "")
	shots, err := s.buildStoryboard(ctx, task)
	if err != nil {
		return fmt.Errorf("storyboard: %w", err)
	}
	if err := s.repo.UpdateShots(ctx, task.ID, shots); err != nil {
		return fmt.Errorf("save shots: %w", err)
	}

	// 2. 配音规划（生成和合成共用同一份规划结果）
	planned, err := s.planner.Plan(ctx, shots, task.Options, task.Script, workDir)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	applyPlan(shots, planned)
	if err := s.repo.UpdateShots(ctx, task.ID, shots); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	// 3. 逐镜生成
	s.setStatus(ctx, task.ID, drama.StatusGenerating, "")
	segments, err := s.generator.GenerateAll(ctx, shots, planned, workDir)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	s.backupSegments(ctx, task.ID, shots, segments)
	if err := s.repo.UpdateShots(ctx, task.ID, shots); err != nil {
		return fmt.Errorf("save segments: %w", err)
	}

	// 4. 音画合成
	s.setStatus(ctx, task.ID, drama.StatusCompositing, "")
	bgmPath, err := s.fetchBGM(ctx, task.Options.BGMURL, workDir)
	if err != nil {
		return fmt.Errorf("fetch bgm: %w", err)
	}

	result, err := s.compositor.Composite(ctx, segments, planned, CompositeOptions{
		Title:        task.Title,
		Transition:   s.resolveTransition(task.Options),
		BGMPath:      bgmPath,
		BurnSubtitle: task.Options.BurnSubtitle,
	}, workDir)
	if err != nil {
		return fmt.Errorf("composite: %w", err)
	}

	// 5. 产物上传
	mergedURL, err := s.uploadFile(ctx, result.VideoPath, storage.MergedKey(task.ID), "video/mp4")
	if err != nil {
		return fmt.Errorf("upload merged video: %w", err)
	}
	voiceURL, err := s.uploadFile(ctx, result.VoicePath, storage.VoiceKey(task.ID), "audio/mpeg")
	if err != nil {
		return fmt.Errorf("upload voice track: %w", err)
	}

	if err := s.repo.Update(ctx, task.ID, map[string]interface{}{
		"merged_url":   mergedURL,
		"voice_url":    voiceURL,
		"duration_sec": result.DurationSec,
	}); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}

	return nil
}

// buildStoryboard 生成分镜，序号从 1 开始连续编号
func (s *Service) buildStoryboard(ctx context.Context, task *drama.Task) ([]drama.Shot, error) {
	var drafts []chain.ShotDraft
	var err error

	if s.aiClient != nil {
		drafts, err = s.aiClient.GenerateStoryboard(ctx, task.Title, task.Script, task.Options.MaxShots)
		if err != nil {
			return nil, err
		}
	} else {
		maxShots := task.Options.MaxShots
		if maxShots <= 0 {
			maxShots = 12
		}
		drafts = chain.FallbackStoryboard(task.Script, maxShots)
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("storyboard produced no shots")
	}

	shots := make([]drama.Shot, len(drafts))
	for i, d := range drafts {
		shots[i] = drama.Shot{
			Index:          i + 1,
			ShotType:       d.ShotType,
			Description:    d.Description,
			Dialogue:       d.Dialogue,
			CharacterNames: d.CharacterNames,
			T2VPrompt:      d.T2VPrompt,
		}
	}

	return shots, nil
}

// applyPlan 把规划产物回填到分镜实体
func applyPlan(shots []drama.Shot, planned []PlannedShot) {
	for i := range shots {
		if i >= len(planned) {
			break
		}
		ps := planned[i]
		shots[i].VoiceID = ps.VoiceID
		shots[i].Emotion = ps.Emotion
		shots[i].Speed = ps.Speed
		shots[i].MeasuredSec = ps.MeasuredSec
		shots[i].TargetSec = ps.TargetSec
		shots[i].APIDuration = ps.APIDuration
		shots[i].Silent = ps.Silent
	}
}

// backupSegments 分段备份上传，失败不阻断流水线
func (s *Service) backupSegments(ctx context.Context, taskID string, shots []drama.Shot, segments []GeneratedSegment) {
	for i, seg := range segments {
		url, err := s.uploadFile(ctx, seg.LocalPath, storage.SegmentKey(taskID, seg.Index), "video/mp4")
		if err != nil {
			log.Warn().Err(err).Int("shot", seg.Index).Msg("分段备份上传失败")
			continue
		}
		if i < len(shots) {
			shots[i].GenTaskID = seg.TaskID
			shots[i].SegmentURL = url
		}
	}
}

// fetchBGM 下载任务指定的背景音乐
func (s *Service) fetchBGM(ctx context.Context, bgmURL, workDir string) (string, error) {
	if bgmURL == "" {
		return "", nil
	}
	bgmPath := filepath.Join(workDir, "bgm.mp3")
	if err := s.downloader.DownloadToFile(ctx, bgmURL, bgmPath); err != nil {
		return "", err
	}
	return bgmPath, nil
}

// resolveTransition 任务选项优先，其次全局配置
func (s *Service) resolveTransition(options drama.TaskOptions) string {
	if options.Transition != "" {
		return options.Transition
	}
	return s.cfg.Pipeline.Transition
}

// uploadFile 上传文件并返回预签名下载 URL
func (s *Service) uploadFile(ctx context.Context, localPath, key, contentType string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	if _, err := s.storage.Upload(ctx, key, file, contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	url, err := s.storage.GetPresignedDownloadURL(ctx, key, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return url, nil
}

// makeWorkDir 创建本次运行的工作目录
func (s *Service) makeWorkDir(taskID string) (string, error) {
	base := s.cfg.Pipeline.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "shotmove", taskID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	return dir, nil
}
