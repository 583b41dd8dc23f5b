package drama

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"shotmove/internal/config"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/dramatools"
	"shotmove/internal/pkg/tts"
)

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		ZhCharsPerSec:  4.5,
		EnWordsPerSec:  2.8,
		PausePerMark:   0.10,
		TailPadSec:     0.25,
		MinShotSec:     2.0,
		MaxShotSec:     10.0,
		ScaleTolerance: 0.5,
	}
}

// fakeSynth 按文本返回固定时长的假 TTS 引擎
type fakeSynth struct {
	durations map[string]float64
	err       error
	requests  []tts.Request
}

func (f *fakeSynth) Synthesize(ctx context.Context, req *tts.Request) (*tts.Result, error) {
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Result{
		AudioData:   []byte("mp3-bytes"),
		DurationSec: f.durations[req.Text],
	}, nil
}

// fakeEmotion 固定输出的情绪分类器
type fakeEmotion struct {
	emotion string
	err     error
}

func (f *fakeEmotion) InferEmotion(ctx context.Context, line string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.emotion, nil
}

func newTestPlanner(synth tts.Synthesizer, classifier EmotionClassifier) *Planner {
	selector := dramatools.NewVoiceSelector(nil, tts.VoiceGenders())
	return NewPlanner(testPipelineConfig(), 50, selector, synth, classifier, nil)
}

func TestPlanner_Plan(t *testing.T) {
	Convey("Planner 配音规划", t, func() {
		ctx := context.Background()
		workDir := t.TempDir()

		Convey("镜头时长覆盖配音并留出尾部余量", func() {
			synth := &fakeSynth{durations: map[string]float64{"你来了。": 3.2}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{
				{Index: 1, Dialogue: "翠兰：你来了。", CharacterNames: []string{"翠兰"}},
			}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned, ShouldHaveLength, 1)
			So(planned[0].MeasuredSec, ShouldAlmostEqual, 3.2, 0.001)
			So(planned[0].TargetSec, ShouldAlmostEqual, 3.45, 0.001)
			So(planned[0].TargetSec, ShouldBeGreaterThanOrEqualTo, planned[0].MeasuredSec+0.25)
			So(planned[0].APIDuration, ShouldEqual, "5")
			So(planned[0].AudioPath, ShouldNotBeEmpty)
		})

		Convey("短台词也不低于单镜下限", func() {
			synth := &fakeSynth{durations: map[string]float64{"嗯。": 0.9}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{{Index: 1, Dialogue: "翠兰：嗯。", CharacterNames: []string{"翠兰"}}}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].TargetSec, ShouldAlmostEqual, 2.0, 0.001)
		})

		Convey("长台词吸附到 10 秒档且不超上限", func() {
			synth := &fakeSynth{durations: map[string]float64{"这段台词非常长。": 9.9}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{{Index: 1, Dialogue: "翠兰：这段台词非常长。", CharacterNames: []string{"翠兰"}}}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].TargetSec, ShouldAlmostEqual, 10.0, 0.001)
			So(planned[0].APIDuration, ShouldEqual, "10")
		})

		Convey("纯动作描述的镜头静音处理", func() {
			synth := &fakeSynth{durations: map[string]float64{}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{{Index: 1, Dialogue: "（微微点头）"}}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].Silent, ShouldBeTrue)
			So(planned[0].AudioPath, ShouldBeEmpty)
			So(planned[0].TargetSec, ShouldAlmostEqual, 2.0, 0.001)
			So(synth.requests, ShouldBeEmpty)
		})

		Convey("TTS 失败退化为文本估算", func() {
			synth := &fakeSynth{err: errors.New("tts unavailable")}
			planner := newTestPlanner(synth, nil)
			// 10 个汉字 + 1 个标点
			shots := []drama.Shot{{Index: 1, Dialogue: "翠兰：今天天气真的非常不错。", CharacterNames: []string{"翠兰"}}}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].MeasuredSec, ShouldAlmostEqual, 10.0/4.5+0.10, 0.001)
			So(planned[0].AudioPath, ShouldBeEmpty)
			So(planned[0].TargetSec, ShouldBeGreaterThanOrEqualTo, planned[0].MeasuredSec+0.25)
		})

		Convey("同一角色跨镜头音色一致", func() {
			synth := &fakeSynth{durations: map[string]float64{"第一句。": 2.0, "第二句。": 2.0}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{
				{Index: 1, Dialogue: "翠兰：第一句。", CharacterNames: []string{"翠兰"}},
				{Index: 2, Dialogue: "翠兰：第二句。", CharacterNames: []string{"翠兰"}},
			}

			planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].VoiceID, ShouldNotBeEmpty)
			So(planned[1].VoiceID, ShouldEqual, planned[0].VoiceID)
		})

		Convey("镜头级音色覆盖优先于自动选择", func() {
			synth := &fakeSynth{durations: map[string]float64{"台词。": 2.0}}
			planner := newTestPlanner(synth, nil)
			shots := []drama.Shot{{Index: 1, Dialogue: "翠兰：台词。", CharacterNames: []string{"翠兰"}}}
			options := drama.TaskOptions{
				ShotVoiceIDs: map[string]string{"1": "male-chunhou"},
			}

			planned, err := planner.Plan(ctx, shots, options, "", workDir)

			So(err, ShouldBeNil)
			So(planned[0].VoiceID, ShouldEqual, "male-chunhou")
		})
	})
}

func TestPlanner_ResolveEmotion(t *testing.T) {
	Convey("情绪判定优先级", t, func() {
		ctx := context.Background()

		Convey("模型的非中性判断优先于关键词", func() {
			planner := newTestPlanner(nil, &fakeEmotion{emotion: dramatools.EmotionSad})
			// 关键词会命中 angry（混蛋）
			So(planner.resolveEmotion(ctx, "你这个混蛋"), ShouldEqual, dramatools.EmotionSad)
		})

		Convey("模型判中性时关键词优先", func() {
			planner := newTestPlanner(nil, &fakeEmotion{emotion: dramatools.EmotionNeutral})
			So(planner.resolveEmotion(ctx, "你这个混蛋"), ShouldEqual, dramatools.EmotionAngry)
		})

		Convey("都无信号时落回模型的中性", func() {
			planner := newTestPlanner(nil, &fakeEmotion{emotion: dramatools.EmotionNeutral})
			So(planner.resolveEmotion(ctx, "我们回家吧。"), ShouldEqual, dramatools.EmotionNeutral)
		})

		Convey("模型失败时走关键词", func() {
			planner := newTestPlanner(nil, &fakeEmotion{err: errors.New("llm down")})
			So(planner.resolveEmotion(ctx, "太好了，我们赢了"), ShouldEqual, dramatools.EmotionExcited)
		})
	})
}

func TestPlanner_SpeedDelta(t *testing.T) {
	Convey("情绪微调语速并夹在合法区间", t, func() {
		ctx := context.Background()
		workDir := t.TempDir()
		synth := &fakeSynth{durations: map[string]float64{"太好了，我们赢了！": 2.0}}
		planner := newTestPlanner(synth, nil)
		shots := []drama.Shot{{Index: 1, Dialogue: "翠兰：太好了，我们赢了！", CharacterNames: []string{"翠兰"}}}

		planned, err := planner.Plan(ctx, shots, drama.TaskOptions{}, "", workDir)

		So(err, ShouldBeNil)
		So(planned[0].Emotion, ShouldEqual, dramatools.EmotionExcited)
		So(planned[0].Speed, ShouldEqual, 58)
		So(synth.requests[0].Speed, ShouldEqual, 58)
	})
}
