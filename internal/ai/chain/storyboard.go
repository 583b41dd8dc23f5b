package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"shotmove/internal/ai/component"
	"shotmove/internal/config"
	"shotmove/internal/pkg/dramatools"
)

const defaultMaxShots = 12

// StoryboardChain 分镜生成链
// 工作流: 剧本文本 -> Prompt模板 -> ChatModel -> 解析 JSON 分镜列表
// 模型不可用或输出不可解析时退化为按行切分的确定性分镜
type StoryboardChain struct {
	chatModel model.BaseChatModel
}

// ShotDraft 模型产出的分镜草稿，入库前由服务层补全编号等字段
type ShotDraft struct {
	ShotType       string   `json:"shot_type"`       // 景别: 近景/中景/远景等
	Description    string   `json:"description"`     // 画面描述
	Dialogue       string   `json:"dialogue"`        // 台词（含说话人前缀）
	CharacterNames []string `json:"character_names"` // 出场角色名
	T2VPrompt      string   `json:"t2v_prompt"`      // 文生视频提示词
}

// StoryboardRequest 分镜生成请求
type StoryboardRequest struct {
	Title    string
	Script   string
	MaxShots int
}

// NewStoryboardChain 创建分镜生成链
// cfg.APIKey 为空时 chatModel 为 nil，Run 直接走确定性分镜
func NewStoryboardChain(ctx context.Context, cfg *config.AIConfig) (*StoryboardChain, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key 未配置，分镜生成使用确定性切分")
		return &StoryboardChain{}, nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &StoryboardChain{chatModel: chatModel}, nil
}

// Run 生成分镜列表
func (c *StoryboardChain) Run(ctx context.Context, req *StoryboardRequest) ([]ShotDraft, error) {
	if strings.TrimSpace(req.Script) == "" {
		return nil, fmt.Errorf("script is empty")
	}

	maxShots := req.MaxShots
	if maxShots <= 0 {
		maxShots = defaultMaxShots
	}

	if c.chatModel == nil {
		return FallbackStoryboard(req.Script, maxShots), nil
	}

	messages := []*schema.Message{
		schema.SystemMessage("你是一名短剧导演，负责把剧本拆分成适合 AI 文生视频的分镜列表。"),
		schema.UserMessage(buildStoryboardPrompt(req.Title, req.Script, maxShots)),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Warn().Err(err).Msg("分镜模型调用失败，退化为确定性切分")
		return FallbackStoryboard(req.Script, maxShots), nil
	}

	drafts, err := parseShotDrafts(resp.Content)
	if err != nil {
		log.Warn().Err(err).Msg("分镜输出不可解析，退化为确定性切分")
		return FallbackStoryboard(req.Script, maxShots), nil
	}
	if len(drafts) > maxShots {
		drafts = drafts[:maxShots]
	}

	return drafts, nil
}

func buildStoryboardPrompt(title, script string, maxShots int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("把下面的短剧剧本拆分成不超过 %d 个分镜，输出 JSON 数组，", maxShots))
	b.WriteString("每个元素包含 shot_type、description、dialogue、character_names、t2v_prompt 五个字段。\n")
	b.WriteString("dialogue 保留原文的说话人前缀（如「李华：」），没有台词的镜头 dialogue 为空串。\n")
	b.WriteString("t2v_prompt 用一句话描述画面，适合竖屏 9:16 文生视频。只输出 JSON，不要任何解释。\n\n")
	if title != "" {
		b.WriteString("剧名：" + title + "\n")
	}
	b.WriteString("剧本：\n" + script)
	return b.String()
}

// parseShotDrafts 从模型输出中截取 JSON 数组并解析
// 模型偶尔会在 JSON 前后加解释文字或代码块围栏
func parseShotDrafts(content string) ([]ShotDraft, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var drafts []ShotDraft
	if err := json.Unmarshal([]byte(content[start:end+1]), &drafts); err != nil {
		return nil, fmt.Errorf("unmarshal shot drafts: %w", err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("model returned empty storyboard")
	}

	return drafts, nil
}

// FallbackStoryboard 确定性分镜：剧本按行切分，一行一镜
// 说话人前缀当作出场角色，画面描述直接用台词内容
func FallbackStoryboard(script string, maxShots int) []ShotDraft {
	var drafts []ShotDraft
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		draft := ShotDraft{
			ShotType:    "中景",
			Dialogue:    line,
			Description: dramatools.StripSpeakerPrefix(line, nil),
			T2VPrompt:   dramatools.StripSpeakerPrefix(line, nil),
		}
		if speaker := dramatools.SpeakerFromPrefix(line); speaker != "" {
			draft.CharacterNames = []string{speaker}
		}

		drafts = append(drafts, draft)
		if len(drafts) >= maxShots {
			break
		}
	}
	return drafts
}
