package dramatools

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// 性别标签
const (
	GenderFemale = "female"
	GenderMale   = "male"
)

// 性别兜底音色：分类器给出与启发式性别矛盾的建议时，用这两个替换
const (
	DefaultFemaleVoice = "female-yujie"
	DefaultMaleVoice   = "male-qn-jingying"
)

// 已知角色名的性别表，启发式优先于任何概率分类器
var knownFemaleNames = []string{
	"小红", "小美", "翠兰", "春花", "秋月", "婉儿", "语嫣", "诗诗", "雪儿", "月娥",
	"玉儿", "兰儿", "晓梅", "丽娘", "柔儿",
}

var knownMaleNames = []string{
	"大壮", "铁柱", "志强", "建国", "伟强", "子轩", "浩然", "云飞", "天佑", "世杰",
	"阿福", "老张", "老王", "老李",
}

// 称谓关键词，名字里带这些后缀/头衔时性别基本确定
var femaleTitleKeywords = []string{
	"小姐", "姑娘", "夫人", "女士", "娘子", "太太", "妹妹", "姐姐", "婶", "姨", "妈", "婆", "妃", "公主", "女",
}

var maleTitleKeywords = []string{
	"公子", "少爷", "师兄", "先生", "大哥", "兄弟", "叔", "伯", "爷", "哥", "弟", "王爷", "将军", "老板",
}

// VoiceCache 单次运行内的角色→音色映射
// 同一角色在整部剧里保持同一音色，避免前后镜男女混乱
// 每次流水线调用持有自己的实例，并发运行互不串音
type VoiceCache struct {
	m map[string]string
}

// NewVoiceCache 创建空的音色缓存
func NewVoiceCache() *VoiceCache {
	return &VoiceCache{m: make(map[string]string)}
}

// Get 查缓存
func (c *VoiceCache) Get(name string) (string, bool) {
	v, ok := c.m[name]
	return v, ok
}

// Put 写缓存
func (c *VoiceCache) Put(name, voiceID string) {
	if name != "" {
		c.m[name] = voiceID
	}
}

// Len 已缓存的角色数
func (c *VoiceCache) Len() int {
	return len(c.m)
}

// VoiceClassifier 音色分类器（LLM 实现）
// 返回建议的音色 ID；出错或返回空串时选择器走启发式兜底
type VoiceClassifier interface {
	SuggestVoice(ctx context.Context, line, characterName, scriptContext string) (string, error)
}

// VoiceSelector 音色选择器
// 先查缓存，再走名字/称谓启发式，最后才问分类器；
// 分类器建议与启发式性别矛盾时拒绝并替换为该性别的兜底音色
type VoiceSelector struct {
	classifier  VoiceClassifier   // 可为 nil，纯启发式模式
	voiceGender map[string]string // 音色ID → 性别，用于校验分类器建议
}

// NewVoiceSelector 创建音色选择器
func NewVoiceSelector(classifier VoiceClassifier, voiceGender map[string]string) *VoiceSelector {
	if voiceGender == nil {
		voiceGender = map[string]string{}
	}
	return &VoiceSelector{
		classifier:  classifier,
		voiceGender: voiceGender,
	}
}

// SelectVoice 为一句台词选择音色
// characterName 可为空（整段单音色模式），此时从台词与剧本上下文推断
// 最终选择写入 cache，保证同角色跨镜头稳定
func (s *VoiceSelector) SelectVoice(ctx context.Context, line, characterName, scriptContext string, cache *VoiceCache) string {
	if characterName != "" {
		if v, ok := cache.Get(characterName); ok {
			return v
		}
	}

	gender := GuessGenderFromName(characterName)

	voice := ""
	if s.classifier != nil {
		suggested, err := s.classifier.SuggestVoice(ctx, line, characterName, scriptContext)
		if err != nil {
			log.Warn().Err(err).Str("character", characterName).Msg("音色分类器调用失败，走启发式兜底")
		} else if suggested != "" {
			if gender != "" && s.voiceGender[suggested] != "" && s.voiceGender[suggested] != gender {
				// 分类器性别翻车，拒绝建议，用启发式性别的兜底音色
				log.Warn().
					Str("character", characterName).
					Str("suggested", suggested).
					Str("heuristic_gender", gender).
					Msg("分类器建议与称谓性别矛盾，已替换")
				voice = defaultVoiceFor(gender)
			} else {
				voice = suggested
			}
		}
	}

	if voice == "" {
		if gender == "" {
			gender = guessGenderFromContext(line, scriptContext)
		}
		voice = defaultVoiceFor(gender)
	}

	cache.Put(characterName, voice)
	return voice
}

// GuessGenderFromName 从角色名推断性别
// 已知名字表优先，其次称谓关键词；无法判断返回空串
func GuessGenderFromName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	for _, n := range knownFemaleNames {
		if name == n {
			return GenderFemale
		}
	}
	for _, n := range knownMaleNames {
		if name == n {
			return GenderMale
		}
	}

	// 男性称谓先查：「王先生家的小姐姐」这种极端串不追求完美
	for _, kw := range maleTitleKeywords {
		if strings.Contains(name, kw) {
			return GenderMale
		}
	}
	for _, kw := range femaleTitleKeywords {
		if strings.Contains(name, kw) {
			return GenderFemale
		}
	}

	return ""
}

// guessGenderFromContext 无角色名时从台词与剧本上下文整体推断
func guessGenderFromContext(line, scriptContext string) string {
	text := line + " " + scriptContext
	maleHits := 0
	femaleHits := 0
	for _, kw := range maleTitleKeywords {
		maleHits += strings.Count(text, kw)
	}
	for _, kw := range femaleTitleKeywords {
		femaleHits += strings.Count(text, kw)
	}
	if maleHits > femaleHits {
		return GenderMale
	}
	return GenderFemale
}

func defaultVoiceFor(gender string) string {
	if gender == GenderMale {
		return DefaultMaleVoice
	}
	return DefaultFemaleVoice
}
