// Package ai 封装短剧流水线用到的模型能力
// 分镜生成、角色音色分类、台词情绪分类都走同一个 ChatModel
package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"shotmove/internal/ai/chain"
	"shotmove/internal/ai/component"
	"shotmove/internal/config"
	"shotmove/internal/pkg/dramatools"
	"shotmove/internal/pkg/tts"
)

// Client AI 能力层客户端
type Client struct {
	cfg        *config.AIConfig
	chatModel  model.BaseChatModel
	storyboard *chain.StoryboardChain
	voiceIDs   []string
}

// NewClient 创建 AI 客户端
// API key 未配置时进入降级模式：分镜走确定性切分，分类方法返回错误由调用方兜底
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	storyboard, err := chain.NewStoryboardChain(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storyboard chain: %w", err)
	}

	var chatModel model.BaseChatModel
	if cfg.APIKey != "" {
		chatModel, err = component.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create chat model: %w", err)
		}
	}

	genders := tts.VoiceGenders()
	voiceIDs := make([]string, 0, len(genders))
	for id := range genders {
		voiceIDs = append(voiceIDs, id)
	}
	sort.Strings(voiceIDs)

	return &Client{
		cfg:        cfg,
		chatModel:  chatModel,
		storyboard: storyboard,
		voiceIDs:   voiceIDs,
	}, nil
}

// GenerateStoryboard 把剧本拆分成分镜列表
func (c *Client) GenerateStoryboard(ctx context.Context, title, script string, maxShots int) ([]chain.ShotDraft, error) {
	return c.storyboard.Run(ctx, &chain.StoryboardRequest{
		Title:    title,
		Script:   script,
		MaxShots: maxShots,
	})
}

// SuggestVoice 为角色推荐音色，实现 dramatools.VoiceClassifier
// 只接受内置音色表中的 ID，模型输出不在表内时返回错误交给启发式兜底
func (c *Client) SuggestVoice(ctx context.Context, line, characterName, scriptContext string) (string, error) {
	if c.chatModel == nil {
		return "", fmt.Errorf("chat model not configured")
	}

	var b strings.Builder
	b.WriteString("根据台词和角色信息，从候选音色中选一个最合适的，只输出音色 ID，不要任何解释。\n")
	b.WriteString("候选音色：" + strings.Join(c.voiceIDs, ", ") + "\n")
	if characterName != "" {
		b.WriteString("角色名：" + characterName + "\n")
	}
	if scriptContext != "" {
		b.WriteString("剧情背景：" + scriptContext + "\n")
	}
	b.WriteString("台词：" + line)

	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage("你是短剧配音导演，熟悉每个音色的音域和气质。"),
		schema.UserMessage(b.String()),
	})
	if err != nil {
		return "", fmt.Errorf("suggest voice: %w", err)
	}

	suggested := strings.TrimSpace(resp.Content)
	for _, id := range c.voiceIDs {
		if suggested == id {
			return id, nil
		}
	}

	return "", fmt.Errorf("model suggested unknown voice: %q", suggested)
}

// InferEmotion 判断单句台词的情绪，输出固定标签之一
// 失败或输出不在标签集内时返回错误，调用方退化为关键词推断
func (c *Client) InferEmotion(ctx context.Context, line string) (string, error) {
	if c.chatModel == nil {
		return "", fmt.Errorf("chat model not configured")
	}

	labels := []string{
		dramatools.EmotionAngry, dramatools.EmotionSad, dramatools.EmotionFear,
		dramatools.EmotionHate, dramatools.EmotionSurprised, dramatools.EmotionExcited,
		dramatools.EmotionHappy, dramatools.EmotionColdness, dramatools.EmotionNeutral,
	}

	prompt := fmt.Sprintf("判断这句台词的情绪，只输出以下标签之一：%s。\n台词：%s",
		strings.Join(labels, ", "), line)

	resp, err := c.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("infer emotion: %w", err)
	}

	emotion := strings.TrimSpace(strings.ToLower(resp.Content))
	for _, label := range labels {
		if emotion == label {
			return label, nil
		}
	}

	log.Debug().Str("output", resp.Content).Msg("情绪标签不在集合内")
	return "", fmt.Errorf("model returned unknown emotion: %q", emotion)
}
