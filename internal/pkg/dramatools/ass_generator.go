package dramatools

import (
	"fmt"
	"strings"
)

// ASSGenerator ASS字幕生成器
// 时间轴模型与渲染语法分离：这里只负责把 Caption 列表渲染成 ASS 文本
// 长台词按词边界折成多行，用 \N 换行显示
type ASSGenerator struct {
	playResX int
	playResY int
	splitter *CaptionSplitter
}

// NewASSGenerator 创建ASS字幕生成器，默认竖屏短剧分辨率
func NewASSGenerator() *ASSGenerator {
	return &ASSGenerator{
		playResX: 1080,
		playResY: 1920,
		splitter: NewCaptionSplitter(0),
	}
}

// Render 渲染ASS格式内容
func (g *ASSGenerator) Render(captions []Caption, title string) string {
	if title == "" {
		title = "Drama Subtitle"
	}

	header := fmt.Sprintf(`[Script Info]
Title: %s
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes
YCbCr Matrix: TV.601
PlayResX: %d
PlayResY: %d

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Microsoft YaHei,52,&H00FFFFFF,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,2,2,2,20,20,160,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, title, g.playResX, g.playResY)

	events := make([]string, 0, len(captions))
	for _, c := range captions {
		text := strings.Join(g.splitter.SplitForDisplay(c.Text), "\n")
		events = append(events, fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s",
			FormatASSTime(c.StartSec), FormatASSTime(c.EndSec), escapeASSText(text)))
	}

	return header + strings.Join(events, "\n")
}

// FormatASSTime 将秒数转换为ASS时间格式 (H:MM:SS.CC)
func FormatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%d:%02d:%05.2f", hours, minutes, secs)
}

// escapeASSText 转义ASS文本中的特殊字符，汉字双引号统一成转义引号
func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "\"", "\\\"")
	text = strings.ReplaceAll(text, "“", "\\\"")
	text = strings.ReplaceAll(text, "”", "\\\"")
	// ASS 用 \N 换行，输入里的裸换行统一替换
	text = strings.ReplaceAll(text, "\n", "\\N")
	return text
}
