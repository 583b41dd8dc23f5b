package dramatools

import (
	"regexp"
	"strings"

	"github.com/go-ego/gse"
)

// CaptionSplitter 字幕换行分割器
// 长台词按词边界折成多行显示，避免词组被裁断
type CaptionSplitter struct {
	maxRunes  int            // 每行最大字数（默认15）
	segmenter *gse.Segmenter // gse 分词器
}

// NewCaptionSplitter 创建字幕分割器
func NewCaptionSplitter(maxRunes int) *CaptionSplitter {
	if maxRunes <= 0 {
		maxRunes = 15
	}

	// gse 初始化失败时降级为按字符分割
	var segmenter *gse.Segmenter
	if seg, err := gse.New(); err == nil {
		segmenter = &seg
	}

	return &CaptionSplitter{
		maxRunes:  maxRunes,
		segmenter: segmenter,
	}
}

// SplitForDisplay 把一条台词折成显示行
// 先按句末标点分句，仍超长的句子再按分词边界折行
func (s *CaptionSplitter) SplitForDisplay(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitBySentenceEndings(text, []rune{'。', '！', '？', '；', '…'})

	lines := []string{}
	for _, sentence := range sentences {
		if runeLen(cleanCaptionText(sentence)) <= s.maxRunes {
			lines = append(lines, sentence)
			continue
		}
		lines = append(lines, s.wrapLongSentence(sentence)...)
	}

	return mergeTinyLines(lines)
}

// wrapLongSentence 按分词边界折行，单词超长时强制按字符切
func (s *CaptionSplitter) wrapLongSentence(sentence string) []string {
	var words []string
	if s.segmenter != nil {
		words = s.segmenter.Cut(sentence, false)
	} else {
		for _, r := range sentence {
			words = append(words, string(r))
		}
	}

	lines := []string{}
	current := ""
	for _, word := range words {
		if cleanCaptionText(word) == "" {
			// 纯标点直接挂在当前行，不参与长度计算
			current += word
			continue
		}

		if runeLen(cleanCaptionText(current+word)) <= s.maxRunes {
			current += word
			continue
		}

		if current != "" {
			lines = append(lines, current)
		}
		current = word

		// 单个词比一行还长，强制按字符切
		if runeLen(cleanCaptionText(current)) > s.maxRunes {
			chunks := chunkByRunes(current, s.maxRunes)
			lines = append(lines, chunks[:len(chunks)-1]...)
			current = chunks[len(chunks)-1]
		}
	}

	if current != "" {
		lines = append(lines, current)
	}

	return lines
}

// splitBySentenceEndings 按句末标点分句
func splitBySentenceEndings(text string, endings []rune) []string {
	sentences := []string{}
	current := strings.Builder{}

	for _, r := range text {
		current.WriteRune(r)
		for _, e := range endings {
			if r == e {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
				break
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// mergeTinyLines 单字行并入前一行，避免孤字
func mergeTinyLines(lines []string) []string {
	merged := []string{}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if runeLen(cleanCaptionText(line)) == 1 && len(merged) > 0 {
			merged[len(merged)-1] += line
			continue
		}
		merged = append(merged, line)
	}
	return merged
}

// chunkByRunes 按字数硬切
func chunkByRunes(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	chunks := []string{}
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

var captionPunctPattern = regexp.MustCompile(
	`[\s，。；：、！？“”‘’（）【】《》〈〉「」『』〔〕\[\]｛｝｜～·…—–,.;:!?"'()\[\]{}|~` + "`" + `@#$%^&*+=<>/\\-]`)

// cleanCaptionText 移除标点和空白，用于长度计算
func cleanCaptionText(text string) string {
	return captionPunctPattern.ReplaceAllString(text, "")
}

func runeLen(s string) int {
	return len([]rune(s))
}
