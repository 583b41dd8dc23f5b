package tts

import "shotmove/internal/pkg/dramatools"

// Voice 音色元数据
type Voice struct {
	ID       string
	Name     string
	Gender   string
	Emotions []string // 支持的情绪标签，空表示不支持情绪参数
}

// 内置音色表
// 覆盖短剧常用的男女声各几档，兜底音色必须在表内
var builtinVoices = []Voice{
	{
		ID:     "female-yujie",
		Name:   "御姐音",
		Gender: dramatools.GenderFemale,
		Emotions: []string{
			dramatools.EmotionAngry, dramatools.EmotionSad, dramatools.EmotionFear,
			dramatools.EmotionHate, dramatools.EmotionSurprised, dramatools.EmotionExcited,
			dramatools.EmotionHappy, dramatools.EmotionColdness, dramatools.EmotionNeutral,
		},
	},
	{
		ID:     "female-tianmei",
		Name:   "甜美音",
		Gender: dramatools.GenderFemale,
		Emotions: []string{
			dramatools.EmotionSad, dramatools.EmotionSurprised, dramatools.EmotionExcited,
			dramatools.EmotionHappy, dramatools.EmotionNeutral,
		},
	},
	{
		ID:     "female-chengshu",
		Name:   "成熟女声",
		Gender: dramatools.GenderFemale,
	},
	{
		ID:     "male-qn-jingying",
		Name:   "青年精英",
		Gender: dramatools.GenderMale,
		Emotions: []string{
			dramatools.EmotionAngry, dramatools.EmotionSad, dramatools.EmotionFear,
			dramatools.EmotionHate, dramatools.EmotionSurprised, dramatools.EmotionExcited,
			dramatools.EmotionHappy, dramatools.EmotionColdness, dramatools.EmotionNeutral,
		},
	},
	{
		ID:     "male-chunhou",
		Name:   "醇厚男声",
		Gender: dramatools.GenderMale,
		Emotions: []string{
			dramatools.EmotionAngry, dramatools.EmotionSad, dramatools.EmotionNeutral,
		},
	},
	{
		ID:     "male-shaonian",
		Name:   "少年音",
		Gender: dramatools.GenderMale,
	},
}

// VoiceGenders 音色到性别的映射，供音色选择器做一致性校验
func VoiceGenders() map[string]string {
	genders := make(map[string]string, len(builtinVoices))
	for _, v := range builtinVoices {
		genders[v.ID] = v.Gender
	}
	return genders
}

// LookupVoice 查找音色元数据
func LookupVoice(voiceID string) (Voice, bool) {
	for _, v := range builtinVoices {
		if v.ID == voiceID {
			return v, true
		}
	}
	return Voice{}, false
}

// SupportsEmotion 判断音色是否支持指定情绪
// 未知音色保守返回 false，合成时不带情绪参数
func SupportsEmotion(voiceID, emotion string) bool {
	if emotion == "" {
		return false
	}
	v, ok := LookupVoice(voiceID)
	if !ok {
		return false
	}
	for _, e := range v.Emotions {
		if e == emotion {
			return true
		}
	}
	return false
}
