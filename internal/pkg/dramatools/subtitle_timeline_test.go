package dramatools

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTimelineBuilder_BuildCaptionTimeline(t *testing.T) {
	Convey("TimelineBuilder 按镜头时长排期字幕", t, func() {
		Convey("运行时钟逐镜推进", func() {
			builder := NewTimelineBuilder(false, 0)
			lines := []CaptionLine{
				{Text: "第一句"},
				{Text: "第二句"},
				{Text: "第三句"},
			}
			durations := []float64{3.0, 4.0, 2.5}

			captions, err := builder.BuildCaptionTimeline(lines, durations)

			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 3)
			So(captions[0].StartSec, ShouldAlmostEqual, 0.0, 0.001)
			So(captions[0].EndSec, ShouldAlmostEqual, 3.0, 0.001)
			So(captions[1].StartSec, ShouldAlmostEqual, 3.0, 0.001)
			So(captions[1].EndSec, ShouldAlmostEqual, 7.0, 0.001)
			So(captions[2].StartSec, ShouldAlmostEqual, 7.0, 0.001)
			So(captions[2].EndSec, ShouldAlmostEqual, 9.5, 0.001)
		})

		Convey("空台词镜头不出字幕但时钟照常推进", func() {
			builder := NewTimelineBuilder(false, 0)
			lines := []CaptionLine{
				{Text: "开场"},
				{Text: ""},
				{Text: "收尾"},
			}
			durations := []float64{2.0, 3.0, 2.0}

			captions, err := builder.BuildCaptionTimeline(lines, durations)

			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 2)
			So(captions[1].StartSec, ShouldAlmostEqual, 5.0, 0.001)
		})

		Convey("开启跳过旁白时旁白行不出字幕", func() {
			builder := NewTimelineBuilder(true, 0)
			lines := []CaptionLine{
				{Text: "夜色渐深", Narration: true},
				{Text: "你来了"},
			}
			durations := []float64{3.0, 2.0}

			captions, err := builder.BuildCaptionTimeline(lines, durations)

			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 1)
			So(captions[0].Text, ShouldEqual, "你来了")
			So(captions[0].StartSec, ShouldAlmostEqual, 3.0, 0.001)
		})

		Convey("超长台词显示截断但完整文本保留", func() {
			builder := NewTimelineBuilder(false, 10)
			long := strings.Repeat("很长的台词", 5)
			captions, err := builder.BuildCaptionTimeline(
				[]CaptionLine{{Text: long}}, []float64{5.0})

			So(err, ShouldBeNil)
			So(captions, ShouldHaveLength, 1)
			So(len([]rune(captions[0].Text)), ShouldEqual, 10)
			So(strings.HasSuffix(captions[0].Text, "…"), ShouldBeTrue)
			So(captions[0].FullText, ShouldEqual, long)
		})

		Convey("长度不一致时报错", func() {
			builder := NewTimelineBuilder(false, 0)
			_, err := builder.BuildCaptionTimeline(
				[]CaptionLine{{Text: "一句"}}, []float64{1.0, 2.0})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFormatASSTime(t *testing.T) {
	Convey("FormatASSTime 时间格式化", t, func() {
		So(FormatASSTime(0), ShouldEqual, "0:00:00.00")
		So(FormatASSTime(3.5), ShouldEqual, "0:00:03.50")
		So(FormatASSTime(65.25), ShouldEqual, "0:01:05.25")
		So(FormatASSTime(3661.0), ShouldEqual, "1:01:01.00")
	})
}

func TestASSGenerator_Render(t *testing.T) {
	Convey("ASSGenerator 渲染字幕文件", t, func() {
		gen := NewASSGenerator()
		captions := []Caption{
			{StartSec: 0, EndSec: 3, Text: "第一句"},
			{StartSec: 3, EndSec: 7, Text: "他说：“走吧”"},
		}

		content := gen.Render(captions, "测试短剧")

		So(content, ShouldContainSubstring, "[Script Info]")
		So(content, ShouldContainSubstring, "Title: 测试短剧")
		So(content, ShouldContainSubstring, "PlayResX: 1080")
		So(content, ShouldContainSubstring, "PlayResY: 1920")
		So(content, ShouldContainSubstring, "Dialogue: 0,0:00:00.00,0:00:03.00,Default,,0,0,0,,第一句")
		// 汉字引号被转义
		So(content, ShouldNotContainSubstring, "“")

		Convey("多句长台词按句折行，\\N 分隔显示", func() {
			long := []Caption{
				{StartSec: 0, EndSec: 5, Text: "他转身看向远方的山峦。雨一直下个不停。"},
			}

			content := gen.Render(long, "测试短剧")

			So(content, ShouldContainSubstring, "他转身看向远方的山峦。\\N雨一直下个不停。")
		})
	})
}
