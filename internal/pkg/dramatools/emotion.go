package dramatools

import "strings"

// 情绪标签，与 TTS 引擎的 emotion 参数对应
const (
	EmotionAngry     = "angry"
	EmotionSad       = "sad"
	EmotionFear      = "fear"
	EmotionHate      = "hate"
	EmotionSurprised = "surprised"
	EmotionExcited   = "excited"
	EmotionHappy     = "happy"
	EmotionColdness  = "coldness"
	EmotionNeutral   = "neutral"
)

// 关键词情绪表，按优先级排列：强情绪词在前，先命中先得
var emotionKeywords = []struct {
	emotion  string
	keywords []string
}{
	{EmotionAngry, []string{"混蛋", "可恶", "滚", "愤怒", "生气", "气死", "放肆", "岂有此理", "大胆"}},
	{EmotionSad, []string{"伤心", "难过", "眼泪", "哭", "心碎", "悲", "呜呜", "委屈"}},
	{EmotionFear, []string{"害怕", "恐惧", "救命", "吓", "瑟瑟发抖", "不要过来"}},
	{EmotionHate, []string{"讨厌", "恨", "厌恶", "恶心"}},
	{EmotionSurprised, []string{"震惊", "惊讶", "竟然", "居然", "怎么会", "不可能"}},
	{EmotionExcited, []string{"太好了", "太棒了", "激动", "兴奋", "终于"}},
	{EmotionHappy, []string{"开心", "高兴", "哈哈", "真好", "喜欢", "笑"}},
	{EmotionColdness, []string{"冷冷", "淡淡", "漠然", "呵", "随便", "无所谓"}},
}

// 情绪对语速的微调量，叠加到基准语速上，调用方负责夹在 [15,80]
var emotionSpeedDelta = map[string]int{
	EmotionExcited:   8,
	EmotionAngry:     6,
	EmotionSurprised: 4,
	EmotionHappy:     3,
	EmotionHate:      2,
	EmotionColdness:  -3,
	EmotionFear:      -4,
	EmotionSad:       -6,
}

// InferEmotionFromText 从台词文本推断情绪
// 先查关键词表，都没命中时按句尾标点兜底（！激动 ？惊讶 …冷淡）
// 仍无信号时返回空串，调用方决定是否落到 neutral
func InferEmotionFromText(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	for _, entry := range emotionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(t, kw) {
				return entry.emotion
			}
		}
	}

	// 标点兜底，避免整段平淡
	switch {
	case strings.Contains(t, "！") || strings.Contains(t, "!"):
		return EmotionExcited
	case strings.Contains(t, "？") || strings.Contains(t, "?"):
		return EmotionSurprised
	case strings.Contains(t, "…"):
		return EmotionColdness
	}

	return ""
}

// SpeedDelta 情绪对应的语速微调量，未知情绪返回 0
func SpeedDelta(emotion string) int {
	return emotionSpeedDelta[emotion]
}

// ClampSpeed 把语速夹在 TTS 引擎接受的范围内
func ClampSpeed(speed int) int {
	if speed < 15 {
		return 15
	}
	if speed > 80 {
		return 80
	}
	return speed
}
