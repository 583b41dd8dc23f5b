package dramatools

import (
	"regexp"
	"strings"
)

// 估算参数默认值，与线上实测语速一致
const (
	DefaultZhCharsPerSec = 4.5  // 中文 字/秒
	DefaultEnWordsPerSec = 2.8  // 英文 词/秒
	DefaultPausePerMark  = 0.10 // 每个标点的停顿（秒）
	MinSpeechSec         = 0.8  // 非空文本的时长下限
)

var (
	enWordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)
	pauseMarks    = "，。！？；：、…—,.!?;:"
)

// DurationEstimator 台词时长估算器
// TTS 不可用或合成失败时，用它估算朗读一句台词需要的秒数
type DurationEstimator struct {
	zhRate       float64 // 中文语速 字/秒
	enRate       float64 // 英文语速 词/秒
	pausePerMark float64 // 每个标点停顿 秒
}

// NewDurationEstimator 创建估算器，参数 <=0 时取默认值
func NewDurationEstimator(zhRate, enRate, pausePerMark float64) *DurationEstimator {
	if zhRate <= 0 {
		zhRate = DefaultZhCharsPerSec
	}
	if enRate <= 0 {
		enRate = DefaultEnWordsPerSec
	}
	if pausePerMark <= 0 {
		pausePerMark = DefaultPausePerMark
	}
	return &DurationEstimator{
		zhRate:       zhRate,
		enRate:       enRate,
		pausePerMark: pausePerMark,
	}
}

// EstimateSpeechSeconds 估算朗读时长
// 中文按字计、英文按词计、标点按停顿计，结果不低于 0.8s；空白文本返回 0
func (e *DurationEstimator) EstimateSpeechSeconds(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	zhCount := 0
	punctCount := 0
	for _, r := range text {
		switch {
		case isCJK(r):
			zhCount++
		case strings.ContainsRune(pauseMarks, r):
			punctCount++
		}
	}

	enCount := len(enWordPattern.FindAllString(text, -1))

	base := float64(zhCount)/e.zhRate + float64(enCount)/e.enRate
	pause := float64(punctCount) * e.pausePerMark

	total := base + pause
	if total < MinSpeechSec {
		return MinSpeechSec
	}
	return total
}

// isCJK 检查 rune 是否为中日韩统一表意文字
func isCJK(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fff
}
