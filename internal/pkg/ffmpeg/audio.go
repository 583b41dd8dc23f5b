package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// 配音轨统一采样率，所有槽位片段归一到同一格式后才能 concat copy
const (
	VoiceSampleRate = 24000

	// time_stretch 模式的策略边界
	StretchIdentityLow  = 0.95 // 比例接近 1 时拉伸没有收益，退化为裁剪/补静音
	StretchIdentityHigh = 1.05
	StretchRatioMin     = 0.5 // atempo 的可用范围，超出则放弃拉伸
	StretchRatioMax     = 2.0
)

// AlignMode 配音片段对齐到槽位的方式
type AlignMode string

const (
	// AlignPadTrim 保持原始语速，只裁尾或补静音
	// 槽位时长本来就按真实配音时长规划时用这个（常规路径）
	AlignPadTrim AlignMode = "pad_trim"
	// AlignTimeStretch 变速拉伸到正好填满槽位
	// 槽位时长被外部约束（如生成 API 的离散时长档位）时用这个
	AlignTimeStretch AlignMode = "time_stretch"
)

// MakeSilence 生成指定时长的静音片段（无台词镜头的槽位）
func (c *Client) MakeSilence(ctx context.Context, outputPath string, durationSec float64) error {
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", VoiceSampleRate),
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-c:a", "libmp3lame",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg silence failed: %w", err)
	}

	return nil
}

// FitAudioToSlot 把配音片段对齐到槽位时长，输出统一为 24kHz 单声道 mp3
func (c *Client) FitAudioToSlot(ctx context.Context, inputPath, outputPath string, slotSec float64, mode AlignMode) error {
	if slotSec <= 0 {
		return fmt.Errorf("invalid slot duration: %.3f", slotSec)
	}

	audioSec := c.ProbeDuration(ctx, inputPath)
	if audioSec <= 0 {
		return fmt.Errorf("failed to probe audio duration: %s", inputPath)
	}

	if mode == AlignTimeStretch {
		ratio := audioSec / slotSec
		switch {
		case ratio >= StretchIdentityLow && ratio <= StretchIdentityHigh:
			// 接近等长，拉伸没有收益，按 pad_trim 处理
		case ratio >= StretchRatioMin && ratio <= StretchRatioMax:
			return c.stretchAudio(ctx, inputPath, outputPath, ratio, slotSec)
		default:
			// 拉伸比例超出 atempo 合理范围，放弃拉伸
			log.Warn().
				Float64("ratio", ratio).
				Str("input", inputPath).
				Msg("拉伸比例超出范围，退化为裁剪/补静音")
		}
	}

	args := []string{"-y", "-i", inputPath}
	if audioSec >= slotSec {
		// 裁尾
		args = append(args, "-t", fmt.Sprintf("%.3f", slotSec))
	} else {
		// 补尾部静音到槽位长度
		args = append(args, "-af", fmt.Sprintf("apad=whole_dur=%.3f", slotSec))
	}
	args = append(args, voiceEncodeArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg fit audio failed: %w", err)
	}

	return nil
}

// stretchAudio atempo 变速填满槽位，再按槽位截断消除舍入误差
func (c *Client) stretchAudio(ctx context.Context, inputPath, outputPath string, ratio, slotSec float64) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-af", fmt.Sprintf("atempo=%.4f", ratio),
		"-t", fmt.Sprintf("%.3f", slotSec),
	}
	args = append(args, voiceEncodeArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg stretch audio failed: %w", err)
	}

	return nil
}

func voiceEncodeArgs() []string {
	return []string{
		"-ar", fmt.Sprintf("%d", VoiceSampleRate),
		"-ac", "1",
		"-c:a", "libmp3lame",
	}
}

// ConcatAudio 按顺序拼接槽位片段成整条配音轨
// 片段已统一为 24kHz 单声道 mp3，concat demuxer + stream copy
func (c *Client) ConcatAudio(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no audio clips to concat")
	}

	if len(clipPaths) == 1 {
		return copyFile(clipPaths[0], outputPath)
	}

	concatListFile, err := writeConcatList(clipPaths, filepath.Dir(outputPath))
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
		return fmt.Errorf("ffmpeg concat audio failed: %w", err)
	}

	log.Info().
		Int("count", len(clipPaths)).
		Str("output", outputPath).
		Msg("配音轨拼接完成")

	return nil
}

// MixVolumes 混音各路音量
type MixVolumes struct {
	Voice float64 // 配音，默认 1.0
	BGM   float64 // 背景/氛围音，默认 0.25
	SFX   float64 // 音效，默认 0.2
}

// DefaultMixVolumes 默认混音音量
func DefaultMixVolumes() MixVolumes {
	return MixVolumes{Voice: 1.0, BGM: 0.25, SFX: 0.2}
}

// 配音允许超出视频的容差和兜底延长的余量
const (
	mixOverrunEpsilonSec = 0.08
	mixExtendMarginSec   = 0.05
)

// MixIntoVideo 把配音轨（可选 BGM/音效）混入视频
// 配音超出视频超过容差时先克隆末帧延长视频再混音，保证台词不被切掉
// 否则视频流 stream copy，-shortest 截到较短一方
func (c *Client) MixIntoVideo(ctx context.Context, videoPath, voicePath, bgmPath, sfxPath, outputPath string, volumes MixVolumes) error {
	if voicePath == "" {
		return fmt.Errorf("voice track is required for mixing")
	}

	videoSec := c.ProbeDuration(ctx, videoPath)
	voiceSec := c.ProbeDuration(ctx, voicePath)

	mixInput := videoPath
	extended := false
	if videoSec > 0 && voiceSec > videoSec+mixOverrunEpsilonSec {
		padDelta := voiceSec - videoSec + mixExtendMarginSec
		extendedPath := tempSibling(outputPath, "_extended.mp4")
		if err := c.ExtendLastFrame(ctx, videoPath, extendedPath, padDelta); err != nil {
			return fmt.Errorf("extend video for voice overrun: %w", err)
		}
		defer os.Remove(extendedPath)
		mixInput = extendedPath
		extended = true

		log.Info().
			Float64("video_sec", videoSec).
			Float64("voice_sec", voiceSec).
			Float64("pad_delta", padDelta).
			Msg("配音超出成片，克隆末帧延长视频")
	}

	args := []string{"-y", "-i", mixInput, "-i", voicePath}
	if bgmPath != "" {
		args = append(args, "-i", bgmPath)
	}
	if sfxPath != "" {
		args = append(args, "-i", sfxPath)
	}

	filterComplex := MixFilter(bgmPath != "", sfxPath != "", volumes)
	args = append(args,
		"-filter_complex", filterComplex,
		"-map", "0:v:0",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "128k",
	)
	if !extended {
		args = append(args, "-shortest")
	}
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mix failed: %w", err)
	}

	log.Info().
		Str("video", videoPath).
		Str("voice", voicePath).
		Bool("with_bgm", bgmPath != "").
		Bool("with_sfx", sfxPath != "").
		Str("output", outputPath).
		Msg("混音完成")

	return nil
}

// MixFilter 构建混音滤镜：各路先调音量，再 amix 加权求和
// duration=first 以配音轨为基准，避免 BGM 拖长输出
func MixFilter(withBGM, withSFX bool, volumes MixVolumes) string {
	parts := []string{fmt.Sprintf("[1:a]volume=%.2f[va]", volumes.Voice)}
	labels := []string{"[va]"}
	inputIdx := 2

	if withBGM {
		parts = append(parts, fmt.Sprintf("[%d:a]volume=%.2f[ba]", inputIdx, volumes.BGM))
		labels = append(labels, "[ba]")
		inputIdx++
	}
	if withSFX {
		parts = append(parts, fmt.Sprintf("[%d:a]volume=%.2f[sa]", inputIdx, volumes.SFX))
		labels = append(labels, "[sa]")
	}

	if len(labels) == 1 {
		parts = append(parts, "[va]anull[aout]")
	} else {
		parts = append(parts, fmt.Sprintf("%samix=inputs=%d:duration=first[aout]",
			strings.Join(labels, ""), len(labels)))
	}

	return strings.Join(parts, ";")
}

// tempSibling 在目标文件旁生成临时文件路径
func tempSibling(path, suffix string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return filepath.Join(dir, base[:len(base)-len(ext)]+suffix)
}
