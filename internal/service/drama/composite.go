package drama

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"shotmove/internal/config"
	"shotmove/internal/pkg/dramatools"
	"shotmove/internal/pkg/ffmpeg"
)

// 短剧混音中背景音乐压得更低，避免盖住台词
const dramaBGMVolume = 0.15

// CompositeResult 合成产物
type CompositeResult struct {
	VideoPath   string  // 最终成片
	VoicePath   string  // 整条配音轨
	DurationSec float64 // 成片时长
}

// CompositeOptions 合成选项
type CompositeOptions struct {
	Title        string
	Transition   string // 非空时启用转场，放弃逐镜精确对齐
	BGMPath      string // 本地背景音乐文件，可为空
	BurnSubtitle bool
}

// Compositor 音画合成器
// 分段重定时、合并、配音轨构建、混音、字幕烧录
type Compositor struct {
	cfg    config.PipelineConfig
	ffmpeg *ffmpeg.Client
}

// NewCompositor 创建合成器
func NewCompositor(cfg config.PipelineConfig, ffmpegClient *ffmpeg.Client) *Compositor {
	return &Compositor{cfg: cfg, ffmpeg: ffmpegClient}
}

// Composite 把生成的分段和规划的配音合成最终成片
func (c *Compositor) Composite(ctx context.Context, segments []GeneratedSegment, planned []PlannedShot, opts CompositeOptions, workDir string) (*CompositeResult, error) {
	if len(segments) != len(planned) {
		return nil, fmt.Errorf("segments/plan length mismatch: %d vs %d", len(segments), len(planned))
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to composite")
	}

	slots := make([]float64, len(planned))
	for i, ps := range planned {
		slots[i] = ps.TargetSec
	}

	mergedPath := filepath.Join(workDir, "merged.mp4")
	if err := c.mergeSegments(ctx, segments, slots, opts.Transition, mergedPath, workDir); err != nil {
		return nil, err
	}

	videoSec := c.ffmpeg.ProbeDuration(ctx, mergedPath)
	slots = c.reconcileSlots(slots, videoSec)

	voicePath := filepath.Join(workDir, "voice.mp3")
	if err := c.buildVoiceTrack(ctx, planned, slots, voicePath, workDir); err != nil {
		return nil, err
	}

	mixedPath := filepath.Join(workDir, "mixed.mp4")
	if err := c.mix(ctx, mergedPath, voicePath, opts.BGMPath, mixedPath); err != nil {
		return nil, err
	}

	finalPath := mixedPath
	if opts.BurnSubtitle {
		subtitledPath := filepath.Join(workDir, "final.mp4")
		if err := c.burnSubtitles(ctx, mixedPath, subtitledPath, planned, slots, opts.Title, workDir); err != nil {
			return nil, err
		}
		finalPath = subtitledPath
	}

	return &CompositeResult{
		VideoPath:   finalPath,
		VoicePath:   voicePath,
		DurationSec: c.ffmpeg.ProbeDuration(ctx, finalPath),
	}, nil
}

// mergeSegments 分段重定时后合并
// 转场与逐镜精确对齐互斥：启用转场时跳过重定时，按实际分段时长走 xfade
func (c *Compositor) mergeSegments(ctx context.Context, segments []GeneratedSegment, slots []float64, transition string, outputPath, workDir string) error {
	paths := make([]string, len(segments))
	for i, seg := range segments {
		paths[i] = seg.LocalPath
	}

	if transition != "" {
		durations := make([]float64, len(paths))
		for i, p := range paths {
			durations[i] = c.ffmpeg.ProbeDuration(ctx, p)
			if durations[i] <= 0 {
				return fmt.Errorf("probe segment %d failed: %s", segments[i].Index, p)
			}
		}
		return c.ffmpeg.ConcatWithTransitions(ctx, paths, durations, outputPath, transition, 0.5)
	}

	retimed := make([]string, len(paths))
	for i, p := range paths {
		retimedPath := filepath.Join(workDir, fmt.Sprintf("retimed_%02d.mp4", segments[i].Index))
		if err := c.ffmpeg.RetimeSegment(ctx, p, retimedPath, slots[i]); err != nil {
			return fmt.Errorf("retime segment %d: %w", segments[i].Index, err)
		}
		retimed[i] = retimedPath
	}

	return c.ffmpeg.ConcatSegments(ctx, retimed, outputPath)
}

// reconcileSlots 配音槽位与成片实际时长的缩放对账
// 转场压缩或生成服务的档位取整会让两边对不上，超过容差时按比例缩放槽位
func (c *Compositor) reconcileSlots(slots []float64, videoSec float64) []float64 {
	if videoSec <= 0 {
		return slots
	}

	total := 0.0
	for _, s := range slots {
		total += s
	}
	if total <= 0 || math.Abs(total-videoSec) <= c.cfg.ScaleTolerance {
		return slots
	}

	factor := videoSec / total
	scaled := make([]float64, len(slots))
	for i, s := range slots {
		scaled[i] = s * factor
		if scaled[i] < silentShotMinSec {
			scaled[i] = silentShotMinSec
		}
	}

	log.Info().
		Float64("slots_total", total).
		Float64("video_sec", videoSec).
		Float64("factor", factor).
		Msg("配音槽位与成片时长对账，按比例缩放")

	return scaled
}

// buildVoiceTrack 逐槽位对齐配音片段并拼接成整条配音轨
func (c *Compositor) buildVoiceTrack(ctx context.Context, planned []PlannedShot, slots []float64, outputPath, workDir string) error {
	mode := c.alignMode()
	clips := make([]string, len(planned))
	for i, ps := range planned {
		clipPath := filepath.Join(workDir, fmt.Sprintf("slot_%02d.mp3", ps.Index))

		if ps.AudioPath == "" {
			if err := c.ffmpeg.MakeSilence(ctx, clipPath, slots[i]); err != nil {
				return fmt.Errorf("make silence for shot %d: %w", ps.Index, err)
			}
		} else {
			if err := c.ffmpeg.FitAudioToSlot(ctx, ps.AudioPath, clipPath, slots[i], mode); err != nil {
				return fmt.Errorf("fit audio for shot %d: %w", ps.Index, err)
			}
		}
		clips[i] = clipPath
	}

	return c.ffmpeg.ConcatAudio(ctx, clips, outputPath)
}

// alignMode 配音对齐策略
// 槽位按实测配音规划时 pad_trim 保持原始语速即可；
// 槽位被外部约束（转场对账、生成档位取整）时可配成 time_stretch
func (c *Compositor) alignMode() ffmpeg.AlignMode {
	if c.cfg.AlignMode == string(ffmpeg.AlignTimeStretch) {
		return ffmpeg.AlignTimeStretch
	}
	return ffmpeg.AlignPadTrim
}

// mix 把配音轨混入成片
func (c *Compositor) mix(ctx context.Context, videoPath, voicePath, bgmPath, outputPath string) error {
	sfxPath := ""
	if c.cfg.AmbientEnabled && c.cfg.SfxPath != "" {
		if _, err := os.Stat(c.cfg.SfxPath); err == nil {
			sfxPath = c.cfg.SfxPath
		}
	}

	volumes := ffmpeg.DefaultMixVolumes()
	if bgmPath != "" {
		volumes.BGM = dramaBGMVolume
	}

	return c.ffmpeg.MixIntoVideo(ctx, videoPath, voicePath, bgmPath, sfxPath, outputPath, volumes)
}

// burnSubtitles 按槽位时长排期字幕并烧录
// 字幕时间轴和配音轨用同一份槽位数据，天然对齐
func (c *Compositor) burnSubtitles(ctx context.Context, videoPath, outputPath string, planned []PlannedShot, slots []float64, title, workDir string) error {
	lines := make([]dramatools.CaptionLine, len(planned))
	for i, ps := range planned {
		lines[i] = dramatools.CaptionLine{Text: ps.Dialogue, Narration: ps.Narration}
	}

	builder := dramatools.NewTimelineBuilder(c.cfg.SkipNarration, dramatools.DefaultCaptionDisplayRunes)
	captions, err := builder.BuildCaptionTimeline(lines, slots)
	if err != nil {
		return fmt.Errorf("build caption timeline: %w", err)
	}
	if len(captions) == 0 {
		return copyAsFinal(videoPath, outputPath)
	}

	assContent := dramatools.NewASSGenerator().Render(captions, title)
	assPath := filepath.Join(workDir, "subtitles.ass")
	if err := os.WriteFile(assPath, []byte(assContent), 0o644); err != nil {
		return fmt.Errorf("write subtitle file: %w", err)
	}

	return c.ffmpeg.BurnSubtitles(ctx, videoPath, assPath, outputPath)
}

// copyAsFinal 无字幕可烧时直接把混音成片作为最终产物
func copyAsFinal(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read mixed video: %w", err)
	}
	return os.WriteFile(dst, data, 0o644)
}
