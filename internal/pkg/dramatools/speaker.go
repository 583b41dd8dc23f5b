package dramatools

import (
	"regexp"
	"sort"
	"strings"
)

// NarratorMarker 旁白前缀，无论是否提供角色名都会剥掉
const NarratorMarker = "旁白"

// 通用「名字：」前缀最多允许的字符数，超过视为正文里的冒号
const genericPrefixMaxRunes = 6

var (
	narratorPrefixPattern = regexp.MustCompile(`^旁白\s*[：:]\s*`)
	genericPrefixPattern  = regexp.MustCompile(`^([^：:\s]{1,6})\s*[：:]\s*`)

	// 纯动作/神态描述，不送 TTS，镜头配静音槽位
	actionOnlyPattern = regexp.MustCompile(
		`^(微微?点头|点头|摇头|微笑|沉默|不语|皱眉|叹气|抬眼|低头|转身|示意|挥手|摆手|` +
			`抬眼看去|目光扫过|目光掠过|眼神一?动|轻轻?点头|轻轻?摇头|` +
			`略一点头|颔首|摇头不语|笑而不语|沉默不语|默然|无语|—|－|-)\s*[。.]?$`)
	actionComboPattern = regexp.MustCompile(`^[微轻略]?[点头摇叹笑]+[不语默然]*\s*[。.]?$`)
)

// StripSpeakerPrefix 剥掉台词开头的「旁白：」「角色名：」前缀，只留 TTS 应朗读的正文
// knownNames 提供时只剥这些名字（长名优先，避免短名误配长名的前缀）
// 未提供时按通用规则剥不超过 6 字的「名字：」
// 反复剥到没有前缀为止，因此对任意输入幂等
func StripSpeakerPrefix(text string, knownNames []string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}

	// 长名在前，避免「小王」吃掉「小王爷」的前两个字
	sorted := make([]string, len(knownNames))
	copy(sorted, knownNames)
	sort.Slice(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	for {
		stripped := stripOnePrefix(t, sorted)
		if stripped == t {
			return t
		}
		t = stripped
	}
}

func stripOnePrefix(t string, sortedNames []string) string {
	// 旁白前缀永远剥
	if m := narratorPrefixPattern.FindString(t); m != "" {
		return strings.TrimSpace(t[len(m):])
	}

	if len(sortedNames) > 0 {
		for _, name := range sortedNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if rest, ok := cutNamePrefix(t, name); ok {
				return rest
			}
		}
		return t
	}

	// 无角色名时的通用规则：只剥短前缀，避免破坏正文里的冒号
	if m := genericPrefixPattern.FindStringSubmatch(t); m != nil {
		if len([]rune(m[1])) <= genericPrefixMaxRunes {
			return strings.TrimSpace(t[len(m[0]):])
		}
	}

	return t
}

// cutNamePrefix 尝试剥「name：」前缀
func cutNamePrefix(t, name string) (string, bool) {
	if !strings.HasPrefix(t, name) {
		return t, false
	}
	rest := t[len(name):]
	trimmed := strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(trimmed, "：") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "：")), true
	}
	if strings.HasPrefix(trimmed, ":") {
		return strings.TrimSpace(strings.TrimPrefix(trimmed, ":")), true
	}
	return t, false
}

// SpeakerFromPrefix 从台词开头的「XXX：」提取说话人名字，用于音色推断
// 旁白或没有前缀时返回空串
func SpeakerFromPrefix(text string) string {
	t := strings.TrimSpace(text)
	if t == "" || narratorPrefixPattern.MatchString(t) {
		return ""
	}
	if m := genericPrefixPattern.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// IsNarration 判断是否旁白行
func IsNarration(text string) bool {
	return narratorPrefixPattern.MatchString(strings.TrimSpace(text))
}

// IsActionOnly 判断是否为纯动作/神态描述（如「微微点头」「（沉默）」）
// 这类行不应朗读，对应镜头的配音槽位是静音
func IsActionOnly(text string) bool {
	t := strings.TrimSpace(text)
	// 动作描述常被括号包住，先剥一层
	t = strings.Trim(t, "（）()【】[]")
	t = strings.TrimSpace(t)
	if t == "" {
		return true
	}
	if len([]rune(t)) > 50 {
		return false
	}
	return actionOnlyPattern.MatchString(t) || actionComboPattern.MatchString(t)
}
