package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// 统一的视频编码参数，保证所有分段可以无损 concat
const (
	CanonicalFPS    = 30
	CanonicalPixFmt = "yuv420p"
	CanonicalCodec  = "libx264"
	CanonicalPreset = "veryfast"
	CanonicalCRF    = "18"

	// 实测阈值：时长差小于 0.04s 时裁剪/补帧没有意义，仅做同参重编码
	RetimeThresholdSec = 0.04
)

// Client FFmpeg 客户端
// 封装音画对齐流水线依赖的全部 FFmpeg/FFprobe 命令
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// ProbeDuration 探测媒体时长（秒）
// ffprobe 失败或无法解析时返回 0 而不是错误，调用方用文本估算兜底
func (c *Client) ProbeDuration(ctx context.Context, mediaPath string) float64 {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		mediaPath,
	)

	output, err := cmd.Output()
	if err != nil {
		log.Warn().Err(err).Str("path", mediaPath).Msg("ffprobe 探测时长失败")
		return 0
	}

	outputStr := string(output)
	if idx := strings.Index(outputStr, `"duration":`); idx != -1 {
		var duration float64
		if _, err := fmt.Sscanf(outputStr[idx:], `"duration":"%f"`, &duration); err == nil {
			return duration
		}
	}

	return 0
}

// RetimeSegment 把分段重定时到目标时长，输出写入 outputPath，源文件不被修改
// 源比目标长：在目标处硬切；源比目标短：克隆末帧补足；差异在阈值内：仅做同参重编码
// 三种路径都按统一参数重编码，保证后续 concat 可以 stream copy
func (c *Client) RetimeSegment(ctx context.Context, inputPath, outputPath string, targetSec float64) error {
	if targetSec <= 0 {
		return fmt.Errorf("invalid target duration: %.3f", targetSec)
	}

	srcSec := c.ProbeDuration(ctx, inputPath)
	if srcSec <= 0 {
		return fmt.Errorf("failed to probe segment duration: %s", inputPath)
	}

	args := []string{"-y", "-i", inputPath}
	switch {
	case srcSec > targetSec+RetimeThresholdSec:
		// 硬切掉尾部
		args = append(args, "-t", fmt.Sprintf("%.3f", targetSec))
	case srcSec < targetSec-RetimeThresholdSec:
		// 克隆末帧补足，保持原速不慢放
		args = append(args, "-vf", PadFilter(targetSec-srcSec))
	}
	args = append(args, canonicalVideoArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg retime failed: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Float64("source_sec", srcSec).
		Float64("target_sec", targetSec).
		Msg("分段重定时完成")

	return nil
}

// PadFilter 末帧克隆补帧滤镜
func PadFilter(deficitSec float64) string {
	return fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%.3f", deficitSec)
}

// canonicalVideoArgs 统一编码参数，丢弃原始音轨（配音轨在混音阶段统一加入）
func canonicalVideoArgs() []string {
	return []string{
		"-r", fmt.Sprintf("%d", CanonicalFPS),
		"-pix_fmt", CanonicalPixFmt,
		"-an",
		"-c:v", CanonicalCodec,
		"-preset", CanonicalPreset,
		"-crf", CanonicalCRF,
	}
}

// ConcatSegments 按顺序合并分段
// 所有分段已按统一参数编码，走 concat demuxer + stream copy；单个分段直接复制
func (c *Client) ConcatSegments(ctx context.Context, segmentPaths []string, outputPath string) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concat")
	}

	if len(segmentPaths) == 1 {
		return copyFile(segmentPaths[0], outputPath)
	}

	concatListFile, err := writeConcatList(segmentPaths, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	defer os.Remove(concatListFile)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-c", "copy",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	log.Info().
		Int("count", len(segmentPaths)).
		Str("output", outputPath).
		Msg("分段合并完成")

	return nil
}

// ConcatWithTransitions 使用 xfade 转场合并分段
// 每个转场会重叠相邻两段的时间线，整体时长被压缩，与逐镜精确对齐互斥
// 调用方在需要精确对齐时必须禁用转场
func (c *Client) ConcatWithTransitions(ctx context.Context, segmentPaths []string, durations []float64, outputPath, transition string, transitionSec float64) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concat")
	}
	if len(segmentPaths) != len(durations) {
		return fmt.Errorf("segments/durations length mismatch: %d vs %d", len(segmentPaths), len(durations))
	}
	if len(segmentPaths) == 1 {
		return copyFile(segmentPaths[0], outputPath)
	}

	args := []string{"-y"}
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}

	filterComplex, lastLabel := XfadeFilter(durations, transition, transitionSec)
	args = append(args,
		"-filter_complex", filterComplex,
		"-map", lastLabel,
	)
	args = append(args, canonicalVideoArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg xfade concat failed: %w", err)
	}

	log.Info().
		Int("count", len(segmentPaths)).
		Str("transition", transition).
		Str("output", outputPath).
		Msg("转场合并完成")

	return nil
}

// XfadeFilter 构建 xfade 滤镜链，返回 (filter_complex, 末级输出标签)
// 第 i 个转场的 offset = 前 i 段累计时长 - i*transitionSec
func XfadeFilter(durations []float64, transition string, transitionSec float64) (string, string) {
	if transition == "" {
		transition = "fade"
	}
	if transitionSec <= 0 {
		transitionSec = 0.5
	}

	var parts []string
	prevLabel := "[0:v]"
	offset := 0.0
	for i := 1; i < len(durations); i++ {
		offset += durations[i-1] - transitionSec
		outLabel := fmt.Sprintf("[vx%d]", i)
		parts = append(parts, fmt.Sprintf("%s[%d:v]xfade=transition=%s:duration=%.3f:offset=%.3f%s",
			prevLabel, i, transition, transitionSec, offset, outLabel))
		prevLabel = outLabel
	}

	return strings.Join(parts, ";"), prevLabel
}

// ExtendLastFrame 克隆末帧延长视频，保留已有音轨
// 混音阶段配音超出视频时用它兜底，避免台词被切掉
func (c *Client) ExtendLastFrame(ctx context.Context, inputPath, outputPath string, extendSec float64) error {
	if extendSec <= 0 {
		return copyFile(inputPath, outputPath)
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-vf", PadFilter(extendSec),
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", CanonicalFPS),
		"-pix_fmt", CanonicalPixFmt,
		"-c:v", CanonicalCodec,
		"-preset", CanonicalPreset,
		"-crf", CanonicalCRF,
		"-c:a", "copy",
		outputPath,
	)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extend failed: %w", err)
	}

	return nil
}

// BurnSubtitles 烧录 ASS 字幕
func (c *Client) BurnSubtitles(ctx context.Context, videoPath, assPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("ass=%s", assPath),
		"-c:v", CanonicalCodec,
		"-c:a", "copy",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg burn subtitles failed: %w", err)
	}

	log.Info().
		Str("video", videoPath).
		Str("subtitle", assPath).
		Str("output", outputPath).
		Msg("字幕烧录完成")

	return nil
}

// writeConcatList 写 concat demuxer 的清单文件
func writeConcatList(paths []string, dir string) (string, error) {
	listFile := filepath.Join(dir, fmt.Sprintf("concat_list_%d.txt", time.Now().UnixNano()))

	file, err := os.Create(listFile)
	if err != nil {
		return "", fmt.Errorf("create concat list file: %w", err)
	}
	defer file.Close()

	for _, p := range paths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			os.Remove(listFile)
			return "", fmt.Errorf("get absolute path: %w", err)
		}
		fmt.Fprintf(file, "file '%s'\n", absPath)
	}

	return listFile, nil
}

// copyFile 单分段场景直接复制文件
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write dest file: %w", err)
	}
	return nil
}
