package dramatools

import (
	"fmt"
	"strings"
)

// DefaultCaptionDisplayRunes 单条字幕的显示字数预算，超出截断加省略号
const DefaultCaptionDisplayRunes = 30

// CaptionLine 一条待排期的字幕输入
type CaptionLine struct {
	Text      string // 完整台词（已剥说话人前缀）
	Narration bool   // 是否旁白行
}

// Caption 排期后的字幕事件
type Caption struct {
	StartSec float64 // 开始时间（秒）
	EndSec   float64 // 结束时间（秒）
	Text     string  // 显示文本（可能被截断）
	FullText string  // 完整文本（非显示用途保留）
}

// TimelineBuilder 字幕时间轴构建器
// 必须消费与重定时/配音轨完全相同的目标时长切片，这是防止字幕漂移的核心约束
type TimelineBuilder struct {
	skipNarration   bool // 是否跳过旁白行
	maxDisplayRunes int  // 单条字幕显示字数预算
}

// NewTimelineBuilder 创建字幕时间轴构建器
func NewTimelineBuilder(skipNarration bool, maxDisplayRunes int) *TimelineBuilder {
	if maxDisplayRunes <= 0 {
		maxDisplayRunes = DefaultCaptionDisplayRunes
	}
	return &TimelineBuilder{
		skipNarration:   skipNarration,
		maxDisplayRunes: maxDisplayRunes,
	}
}

// BuildCaptionTimeline 按镜头顺序累计时钟生成字幕事件
// 第 i 条字幕覆盖 [t, t+durations[i])，t 随每镜推进
// 跳过的行（空文本、可选的旁白）不产生事件但时钟照常推进
func (b *TimelineBuilder) BuildCaptionTimeline(lines []CaptionLine, durations []float64) ([]Caption, error) {
	if len(lines) != len(durations) {
		return nil, fmt.Errorf("lines/durations length mismatch: %d vs %d", len(lines), len(durations))
	}

	captions := make([]Caption, 0, len(lines))
	t := 0.0
	for i, line := range lines {
		d := durations[i]
		start := t
		t += d

		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		if b.skipNarration && line.Narration {
			continue
		}

		captions = append(captions, Caption{
			StartSec: start,
			EndSec:   start + d,
			Text:     TruncateForDisplay(text, b.maxDisplayRunes),
			FullText: text,
		})
	}

	return captions, nil
}

// TruncateForDisplay 超出显示预算时截断并加省略号
func TruncateForDisplay(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes-1]) + "…"
}
