package tts

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"shotmove/internal/pkg/dramatools"
)

func TestSpeedRatio(t *testing.T) {
	Convey("SpeedRatio 抽象语速映射", t, func() {
		So(SpeedRatio(0), ShouldAlmostEqual, 0.8, 0.001)
		So(SpeedRatio(50), ShouldAlmostEqual, 1.0, 0.001)
		So(SpeedRatio(100), ShouldAlmostEqual, 1.2, 0.001)

		Convey("越界值被夹住", func() {
			So(SpeedRatio(-10), ShouldAlmostEqual, 0.8, 0.001)
			So(SpeedRatio(200), ShouldAlmostEqual, 1.2, 0.001)
		})
	})
}

func TestVoiceTable(t *testing.T) {
	Convey("内置音色表", t, func() {
		Convey("兜底音色在表内且性别正确", func() {
			genders := VoiceGenders()
			So(genders[dramatools.DefaultFemaleVoice], ShouldEqual, dramatools.GenderFemale)
			So(genders[dramatools.DefaultMaleVoice], ShouldEqual, dramatools.GenderMale)
		})

		Convey("情绪支持按音色能力判断", func() {
			So(SupportsEmotion("female-yujie", dramatools.EmotionAngry), ShouldBeTrue)
			So(SupportsEmotion("male-chunhou", dramatools.EmotionExcited), ShouldBeFalse)
			So(SupportsEmotion("female-chengshu", dramatools.EmotionHappy), ShouldBeFalse)
		})

		Convey("未知音色和空情绪保守处理", func() {
			So(SupportsEmotion("unknown-voice", dramatools.EmotionAngry), ShouldBeFalse)
			So(SupportsEmotion("female-yujie", ""), ShouldBeFalse)
		})
	})
}

func TestBuildRequestConfig(t *testing.T) {
	Convey("volcano 请求体构建", t, func() {
		engine, err := NewVolcanoEngine(Config{AccessToken: "token", AppID: "app"})
		So(err, ShouldBeNil)

		Convey("支持情绪的音色携带情绪参数", func() {
			body := engine.buildRequestConfig(&Request{
				Text:    "你来了。",
				Voice:   "female-yujie",
				Emotion: dramatools.EmotionAngry,
				Speed:   58,
			}, "req-1")

			audio := body["audio"].(map[string]interface{})
			So(audio["voice_type"], ShouldEqual, "female-yujie")
			So(audio["emotion"], ShouldEqual, dramatools.EmotionAngry)
			So(audio["enable_emotion"], ShouldEqual, true)
			So(audio["speed_ratio"], ShouldAlmostEqual, 0.8+0.58*0.4, 0.001)
		})

		Convey("不支持情绪的音色降级为中性", func() {
			body := engine.buildRequestConfig(&Request{
				Text:    "你来了。",
				Voice:   "male-chunhou",
				Emotion: dramatools.EmotionExcited,
				Speed:   50,
			}, "req-2")

			audio := body["audio"].(map[string]interface{})
			_, hasEmotion := audio["emotion"]
			So(hasEmotion, ShouldBeFalse)
		})

		Convey("基础引擎从不携带情绪", func() {
			basic, berr := NewBasicEngine(Config{AccessToken: "token"})
			So(berr, ShouldBeNil)

			body := basic.buildRequestConfig(&Request{
				Text:    "你来了。",
				Voice:   "female-yujie",
				Emotion: dramatools.EmotionAngry,
				Speed:   50,
			}, "req-3")

			audio := body["audio"].(map[string]interface{})
			_, hasEmotion := audio["emotion"]
			So(hasEmotion, ShouldBeFalse)
		})
	})
}

func TestParseDurationSec(t *testing.T) {
	Convey("parseDurationSec 时长解析", t, func() {
		Convey("字符串毫秒转秒", func() {
			resp := map[string]interface{}{
				"addition": map[string]interface{}{"duration": "2350"},
			}
			So(parseDurationSec(resp), ShouldAlmostEqual, 2.35, 0.001)
		})

		Convey("数值毫秒转秒", func() {
			resp := map[string]interface{}{
				"addition": map[string]interface{}{"duration": 1500.0},
			}
			So(parseDurationSec(resp), ShouldAlmostEqual, 1.5, 0.001)
		})

		Convey("缺失时返回 0", func() {
			So(parseDurationSec(map[string]interface{}{}), ShouldEqual, 0)
		})
	})
}
