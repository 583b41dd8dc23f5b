package dramatools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCaptionSplitter_SplitForDisplay(t *testing.T) {
	Convey("CaptionSplitter 字幕折行", t, func() {
		splitter := NewCaptionSplitter(15)

		Convey("短句不折行", func() {
			lines := splitter.SplitForDisplay("你来了。")
			So(lines, ShouldHaveLength, 1)
			So(lines[0], ShouldEqual, "你来了。")
		})

		Convey("按句末标点分句", func() {
			lines := splitter.SplitForDisplay("你来了。坐吧！喝茶？")
			So(lines, ShouldHaveLength, 3)
		})

		Convey("超长句子折行后每行不超过预算", func() {
			long := "他缓缓地从远处的山坡上走了下来然后穿过了一整片开满野花的草地最后停在了她的面前"
			lines := splitter.SplitForDisplay(long)
			So(len(lines), ShouldBeGreaterThan, 1)
			for _, line := range lines {
				So(runeLen(cleanCaptionText(line)), ShouldBeLessThanOrEqualTo, 15)
			}
		})

		Convey("空文本返回空结果", func() {
			So(splitter.SplitForDisplay(""), ShouldBeEmpty)
			So(splitter.SplitForDisplay("   "), ShouldBeEmpty)
		})
	})
}
