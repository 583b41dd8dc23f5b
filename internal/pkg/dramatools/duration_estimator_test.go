package dramatools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDurationEstimator_EstimateSpeechSeconds(t *testing.T) {
	Convey("DurationEstimator 估算台词朗读时长", t, func() {
		est := NewDurationEstimator(0, 0, 0)

		Convey("空白文本返回 0", func() {
			So(est.EstimateSpeechSeconds(""), ShouldEqual, 0)
			So(est.EstimateSpeechSeconds("   "), ShouldEqual, 0)
			So(est.EstimateSpeechSeconds("\n\t"), ShouldEqual, 0)
		})

		Convey("非空文本不低于 0.8 秒下限", func() {
			So(est.EstimateSpeechSeconds("嗯"), ShouldEqual, MinSpeechSec)
			So(est.EstimateSpeechSeconds("a"), ShouldEqual, MinSpeechSec)
			So(est.EstimateSpeechSeconds("好的。"), ShouldBeGreaterThanOrEqualTo, MinSpeechSec)
		})

		Convey("中文按 4.5 字/秒计算", func() {
			// 10 个汉字，无标点
			So(est.EstimateSpeechSeconds("今天天气真的非常不错"), ShouldAlmostEqual, 10.0/4.5, 0.001)
		})

		Convey("英文按 2.8 词/秒计算", func() {
			// 7 words
			So(est.EstimateSpeechSeconds("this is a test of seven words"), ShouldAlmostEqual, 7.0/2.8, 0.001)
		})

		Convey("标点按 0.10 秒停顿累加", func() {
			withPunct := est.EstimateSpeechSeconds("你来了，我走了。")
			without := est.EstimateSpeechSeconds("你来了我走了")
			So(withPunct-without, ShouldAlmostEqual, 0.20, 0.001)
		})

		Convey("中英混排分别计数", func() {
			got := est.EstimateSpeechSeconds("打开App看看")
			So(got, ShouldAlmostEqual, 4.0/4.5+1.0/2.8, 0.001)
		})

		Convey("追加汉字时估算单调不减", func() {
			text := "他说"
			prev := est.EstimateSpeechSeconds(text)
			for i := 0; i < 30; i++ {
				text += "话"
				cur := est.EstimateSpeechSeconds(text)
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})

		Convey("长文本估算远超下限", func() {
			long := strings.Repeat("这是一段很长的台词", 10)
			So(est.EstimateSpeechSeconds(long), ShouldBeGreaterThan, 10)
		})
	})
}
