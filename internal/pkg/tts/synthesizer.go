// Package tts 文本转语音引擎
package tts

import "context"

// 语速换算边界
// 引擎接收 0-100 的抽象语速，映射到 speed_ratio [0.8, 1.2]
const (
	SpeedRatioBase = 0.8
	SpeedRatioSpan = 0.4
)

// Request 单句合成请求
type Request struct {
	Text    string // 台词文本（已去掉说话人前缀）
	Voice   string // 音色 ID
	Emotion string // 情绪标签，空串表示中性
	Speed   int    // 抽象语速 0-100，50 为常速
}

// Result 合成结果
type Result struct {
	AudioData   []byte  // mp3 音频
	DurationSec float64 // 实测时长（秒），引擎未返回时为 0，调用方探测兜底
}

// Synthesizer TTS 引擎抽象
// 合成失败返回错误，调用方退化为文本估算时长加静音槽位
type Synthesizer interface {
	Synthesize(ctx context.Context, req *Request) (*Result, error)
}

// SpeedRatio 把 0-100 的抽象语速映射到引擎的 speed_ratio
func SpeedRatio(speed int) float64 {
	if speed < 0 {
		speed = 0
	}
	if speed > 100 {
		speed = 100
	}
	return SpeedRatioBase + float64(speed)/100.0*SpeedRatioSpan
}
