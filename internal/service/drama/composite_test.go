package drama

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"shotmove/internal/pkg/ffmpeg"
)

func TestCompositor_ReconcileSlots(t *testing.T) {
	Convey("配音槽位与成片时长对账", t, func() {
		c := NewCompositor(testPipelineConfig(), ffmpeg.NewClient())

		Convey("差异在容差内不动槽位", func() {
			slots := []float64{3.0, 4.0, 2.5}
			got := c.reconcileSlots(slots, 9.8) // 总和 9.5，差 0.3 < 0.5
			So(got[0], ShouldAlmostEqual, 3.0, 0.001)
			So(got[1], ShouldAlmostEqual, 4.0, 0.001)
			So(got[2], ShouldAlmostEqual, 2.5, 0.001)
		})

		Convey("超过容差时按比例缩放", func() {
			slots := []float64{5.0, 5.0}
			got := c.reconcileSlots(slots, 9.0) // 总和 10，差 1.0
			So(got[0], ShouldAlmostEqual, 4.5, 0.001)
			So(got[1], ShouldAlmostEqual, 4.5, 0.001)
		})

		Convey("缩放后的槽位不低于静音下限", func() {
			slots := []float64{1.2, 8.8}
			got := c.reconcileSlots(slots, 7.0) // factor 0.7
			So(got[0], ShouldAlmostEqual, 1.0, 0.001)
			So(got[1], ShouldAlmostEqual, 6.16, 0.001)
		})

		Convey("成片探测失败时原样返回", func() {
			slots := []float64{3.0, 3.0}
			got := c.reconcileSlots(slots, 0)
			So(got[0], ShouldAlmostEqual, 3.0, 0.001)
		})
	})
}

func TestCompositor_AlignMode(t *testing.T) {
	Convey("配音对齐策略取自配置", t, func() {
		Convey("默认与 pad_trim 都保持原始语速", func() {
			cfg := testPipelineConfig()
			cfg.AlignMode = ""
			So(NewCompositor(cfg, ffmpeg.NewClient()).alignMode(), ShouldEqual, ffmpeg.AlignPadTrim)

			cfg.AlignMode = "pad_trim"
			So(NewCompositor(cfg, ffmpeg.NewClient()).alignMode(), ShouldEqual, ffmpeg.AlignPadTrim)
		})

		Convey("配置 time_stretch 时变速填满槽位", func() {
			cfg := testPipelineConfig()
			cfg.AlignMode = "time_stretch"
			So(NewCompositor(cfg, ffmpeg.NewClient()).alignMode(), ShouldEqual, ffmpeg.AlignTimeStretch)
		})
	})
}
