package ffmpeg

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestXfadeFilter(t *testing.T) {
	Convey("XfadeFilter 转场滤镜链", t, func() {
		Convey("转场 offset 按前序累计时长减去转场时长", func() {
			filter, last := XfadeFilter([]float64{5.0, 5.0, 10.0}, "fade", 0.5)

			So(last, ShouldEqual, "[vx2]")
			So(filter, ShouldContainSubstring, "xfade=transition=fade:duration=0.500:offset=4.500")
			So(filter, ShouldContainSubstring, "xfade=transition=fade:duration=0.500:offset=9.000")
			So(strings.Count(filter, "xfade"), ShouldEqual, 2)
		})

		Convey("空转场名和非法时长回退默认值", func() {
			filter, _ := XfadeFilter([]float64{3.0, 3.0}, "", 0)
			So(filter, ShouldContainSubstring, "transition=fade")
			So(filter, ShouldContainSubstring, "duration=0.500")
		})

		Convey("两段只有一个转场", func() {
			filter, last := XfadeFilter([]float64{5.0, 5.0}, "dissolve", 1.0)
			So(last, ShouldEqual, "[vx1]")
			So(filter, ShouldEqual, "[0:v][1:v]xfade=transition=dissolve:duration=1.000:offset=4.000[vx1]")
		})
	})
}

func TestMixFilter(t *testing.T) {
	Convey("MixFilter 混音滤镜", t, func() {
		volumes := DefaultMixVolumes()

		Convey("仅配音时不走 amix", func() {
			filter := MixFilter(false, false, volumes)
			So(filter, ShouldEqual, "[1:a]volume=1.00[va];[va]anull[aout]")
		})

		Convey("配音加 BGM 两路混合", func() {
			filter := MixFilter(true, false, volumes)
			So(filter, ShouldContainSubstring, "[1:a]volume=1.00[va]")
			So(filter, ShouldContainSubstring, "[2:a]volume=0.25[ba]")
			So(filter, ShouldContainSubstring, "[va][ba]amix=inputs=2:duration=first[aout]")
		})

		Convey("三路全开时音效排在 BGM 之后", func() {
			filter := MixFilter(true, true, volumes)
			So(filter, ShouldContainSubstring, "[2:a]volume=0.25[ba]")
			So(filter, ShouldContainSubstring, "[3:a]volume=0.20[sa]")
			So(filter, ShouldContainSubstring, "amix=inputs=3:duration=first[aout]")
		})

		Convey("无 BGM 仅音效时音效占第 2 路输入", func() {
			filter := MixFilter(false, true, volumes)
			So(filter, ShouldContainSubstring, "[2:a]volume=0.20[sa]")
			So(filter, ShouldContainSubstring, "amix=inputs=2:duration=first[aout]")
		})
	})
}

func TestPadFilter(t *testing.T) {
	Convey("PadFilter 末帧克隆补帧", t, func() {
		So(PadFilter(1.5), ShouldEqual, "tpad=stop_mode=clone:stop_duration=1.500")
		So(PadFilter(0.04), ShouldEqual, "tpad=stop_mode=clone:stop_duration=0.040")
	})
}
