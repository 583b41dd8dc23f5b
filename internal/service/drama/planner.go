package drama

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"shotmove/internal/config"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/dramatools"
	"shotmove/internal/pkg/kling"
	"shotmove/internal/pkg/tts"
)

// 槽位时长边界
const (
	silentShotMinSec = 1.0 // 无台词镜头的时长下限
)

// EmotionClassifier 台词情绪分类能力
type EmotionClassifier interface {
	InferEmotion(ctx context.Context, line string) (string, error)
}

// DurationProber 探测媒体文件时长
type DurationProber interface {
	ProbeDuration(ctx context.Context, mediaPath string) float64
}

// PlannedShot 单镜规划结果
// 生成阶段读 APIDuration，合成阶段读 TargetSec/AudioPath，二者出自同一次计算
type PlannedShot struct {
	Index       int
	Dialogue    string // 去掉说话人前缀后的朗读文本
	Speaker     string // 说话人，旁白为空
	Narration   bool
	Silent      bool
	VoiceID     string
	Emotion     string
	Speed       int
	AudioPath   string  // 合成音频落盘路径，合成失败或静音镜头为空
	MeasuredSec float64 // 配音实测时长，静音镜头为 0
	TargetSec   float64 // 规划镜头时长
	APIDuration string  // 生成 API 时长档位
}

// Planner 配音规划器
// 逐镜完成说话人剥离、音色选择、情绪推断、TTS 合成和目标时长计算
type Planner struct {
	cfg         config.PipelineConfig
	baseSpeed   int
	estimator   *dramatools.DurationEstimator
	selector    *dramatools.VoiceSelector
	synthesizer tts.Synthesizer
	classifier  EmotionClassifier
	prober      DurationProber
}

// NewPlanner 创建配音规划器
// synthesizer/classifier 可为 nil，对应能力退化为文本估算/关键词推断
func NewPlanner(
	cfg config.PipelineConfig,
	baseSpeed int,
	selector *dramatools.VoiceSelector,
	synthesizer tts.Synthesizer,
	classifier EmotionClassifier,
	prober DurationProber,
) *Planner {
	if baseSpeed <= 0 {
		baseSpeed = 50
	}

	return &Planner{
		cfg:         cfg,
		baseSpeed:   baseSpeed,
		estimator:   dramatools.NewDurationEstimator(cfg.ZhCharsPerSec, cfg.EnWordsPerSec, cfg.PausePerMark),
		selector:    selector,
		synthesizer: synthesizer,
		classifier:  classifier,
		prober:      prober,
	}
}

// Plan 规划全部镜头
// workDir 用于落盘合成音频；音色缓存的生命周期仅限本次调用
func (p *Planner) Plan(ctx context.Context, shots []drama.Shot, options drama.TaskOptions, scriptContext, workDir string) ([]PlannedShot, error) {
	if len(shots) == 0 {
		return nil, fmt.Errorf("no shots to plan")
	}

	knownNames := collectCharacterNames(shots)
	voiceCache := dramatools.NewVoiceCache()

	planned := make([]PlannedShot, 0, len(shots))
	for _, shot := range shots {
		ps, err := p.planShot(ctx, shot, options, scriptContext, knownNames, voiceCache, workDir)
		if err != nil {
			return nil, fmt.Errorf("plan shot %d: %w", shot.Index, err)
		}
		planned = append(planned, ps)
	}

	return planned, nil
}

func (p *Planner) planShot(ctx context.Context, shot drama.Shot, options drama.TaskOptions, scriptContext string, knownNames []string, voiceCache *dramatools.VoiceCache, workDir string) (PlannedShot, error) {
	ps := PlannedShot{Index: shot.Index}

	cleaned := dramatools.StripSpeakerPrefix(shot.Dialogue, knownNames)
	ps.Dialogue = cleaned
	ps.Speaker = dramatools.SpeakerFromPrefix(shot.Dialogue)
	ps.Narration = dramatools.IsNarration(shot.Dialogue)

	// 无台词或纯动作描述的镜头不配音
	if cleaned == "" || dramatools.IsActionOnly(cleaned) {
		ps.Silent = true
		ps.Dialogue = ""
		ps.TargetSec = p.silentTarget()
		ps.APIDuration = kling.SnapDuration(ps.TargetSec)
		return ps, nil
	}

	ps.VoiceID = p.resolveVoice(ctx, shot, options, scriptContext, voiceCache)
	ps.Emotion = p.resolveEmotion(ctx, cleaned)
	ps.Speed = dramatools.ClampSpeed(p.baseSpeed + dramatools.SpeedDelta(ps.Emotion))

	ps.MeasuredSec, ps.AudioPath = p.synthesize(ctx, cleaned, ps, workDir)

	target := ps.MeasuredSec + p.cfg.TailPadSec
	if target < p.cfg.MinShotSec {
		target = p.cfg.MinShotSec
	}
	if p.cfg.MaxShotSec > 0 && target > p.cfg.MaxShotSec {
		target = p.cfg.MaxShotSec
	}
	ps.TargetSec = target
	ps.APIDuration = kling.SnapDuration(target)

	return ps, nil
}

// resolveVoice 镜头级覆盖 > 任务级指定 > 选择器（缓存+分类器+启发式）
func (p *Planner) resolveVoice(ctx context.Context, shot drama.Shot, options drama.TaskOptions, scriptContext string, cache *dramatools.VoiceCache) string {
	if override := options.ShotVoiceOverride(shot.Index); override != "" {
		return override
	}

	characterName := ""
	if len(shot.CharacterNames) > 0 {
		characterName = shot.CharacterNames[0]
	}
	if speaker := dramatools.SpeakerFromPrefix(shot.Dialogue); speaker != "" {
		characterName = speaker
	}

	return p.selector.SelectVoice(ctx, shot.Dialogue, characterName, scriptContext, cache)
}

// resolveEmotion 模型的非中性判断优先于关键词，关键词优先于模型的中性判断
func (p *Planner) resolveEmotion(ctx context.Context, line string) string {
	var llmEmotion string
	if p.classifier != nil {
		if emotion, err := p.classifier.InferEmotion(ctx, line); err == nil {
			llmEmotion = emotion
		}
	}

	if llmEmotion != "" && llmEmotion != dramatools.EmotionNeutral {
		return llmEmotion
	}
	if kw := dramatools.InferEmotionFromText(line); kw != "" {
		return kw
	}
	return llmEmotion
}

// synthesize 合成台词音频，返回实测时长和落盘路径
// 合成失败退化为文本估算，流水线不因 TTS 故障中断
func (p *Planner) synthesize(ctx context.Context, text string, ps PlannedShot, workDir string) (float64, string) {
	estimated := p.estimator.EstimateSpeechSeconds(text)

	if p.synthesizer == nil {
		return estimated, ""
	}

	result, err := p.synthesizer.Synthesize(ctx, &tts.Request{
		Text:    text,
		Voice:   ps.VoiceID,
		Emotion: ps.Emotion,
		Speed:   ps.Speed,
	})
	if err != nil {
		log.Warn().Err(err).Int("shot", ps.Index).Msg("TTS 合成失败，使用文本估算时长")
		return estimated, ""
	}

	audioPath := filepath.Join(workDir, fmt.Sprintf("voice_%02d.mp3", ps.Index))
	if err := os.WriteFile(audioPath, result.AudioData, 0o644); err != nil {
		log.Warn().Err(err).Int("shot", ps.Index).Msg("配音音频落盘失败，使用文本估算时长")
		return estimated, ""
	}

	measured := result.DurationSec
	if measured <= 0 && p.prober != nil {
		measured = p.prober.ProbeDuration(ctx, audioPath)
	}
	if measured <= 0 {
		measured = estimated
	}

	return measured, audioPath
}

// silentTarget 无台词镜头的规划时长
func (p *Planner) silentTarget() float64 {
	nominal := p.cfg.MinShotSec
	if nominal < silentShotMinSec {
		nominal = silentShotMinSec
	}
	if p.cfg.MaxShotSec > 0 && nominal > p.cfg.MaxShotSec {
		nominal = p.cfg.MaxShotSec
	}
	return nominal
}

// collectCharacterNames 汇总全剧出场角色名，供说话人前缀剥离使用
func collectCharacterNames(shots []drama.Shot) []string {
	seen := make(map[string]bool)
	var names []string
	for _, shot := range shots {
		for _, name := range shot.CharacterNames {
			if name != "" && !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
