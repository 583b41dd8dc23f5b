package dramatools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStripSpeakerPrefix(t *testing.T) {
	Convey("StripSpeakerPrefix 剥说话人前缀", t, func() {
		Convey("旁白前缀永远剥掉", func() {
			So(StripSpeakerPrefix("旁白：夜色渐深。", nil), ShouldEqual, "夜色渐深。")
			So(StripSpeakerPrefix("旁白: 夜色渐深。", nil), ShouldEqual, "夜色渐深。")
		})

		Convey("提供角色名时只剥已知名字", func() {
			names := []string{"李华", "王小明"}
			So(StripSpeakerPrefix("李华：你来了。", names), ShouldEqual, "你来了。")
			So(StripSpeakerPrefix("王小明: 我到了。", names), ShouldEqual, "我到了。")
			// 未知名字不剥
			So(StripSpeakerPrefix("张三：我是谁。", names), ShouldEqual, "张三：我是谁。")
		})

		Convey("长名优先，短名不吃长名前缀", func() {
			names := []string{"小王", "小王爷"}
			So(StripSpeakerPrefix("小王爷：退下。", names), ShouldEqual, "退下。")
		})

		Convey("无角色名时按通用规则剥不超过6字的前缀", func() {
			So(StripSpeakerPrefix("张三：吃了吗。", nil), ShouldEqual, "吃了吗。")
			// 前缀过长视为正文里的冒号
			long := "这是一个很长的引导语句：后面才是正文"
			So(StripSpeakerPrefix(long, nil), ShouldEqual, long)
		})

		Convey("已知名字模式只剥名字，正文里的「注意：」保留", func() {
			names := []string{"张三"}
			once := StripSpeakerPrefix("张三：注意：前方危险", names)
			So(once, ShouldEqual, "注意：前方危险")
			So(StripSpeakerPrefix(once, names), ShouldEqual, once)
		})

		Convey("剥两次与剥一次结果相同（幂等）", func() {
			inputs := []string{
				"旁白：李华：你来了。",
				"张三：吃了吗。",
				"没有前缀的一句话",
				"旁白：夜色渐深。",
				"",
			}
			for _, in := range inputs {
				once := StripSpeakerPrefix(in, nil)
				twice := StripSpeakerPrefix(once, nil)
				So(twice, ShouldEqual, once)
			}
		})

		Convey("空文本返回空串", func() {
			So(StripSpeakerPrefix("", nil), ShouldEqual, "")
			So(StripSpeakerPrefix("   ", nil), ShouldEqual, "")
		})
	})
}

func TestSpeakerFromPrefix(t *testing.T) {
	Convey("SpeakerFromPrefix 提取说话人", t, func() {
		So(SpeakerFromPrefix("李华：你来了。"), ShouldEqual, "李华")
		So(SpeakerFromPrefix("旁白：夜色渐深。"), ShouldEqual, "")
		So(SpeakerFromPrefix("没有冒号的句子"), ShouldEqual, "")
	})
}

func TestIsActionOnly(t *testing.T) {
	Convey("IsActionOnly 识别纯动作描述", t, func() {
		Convey("常见动作短语判定为动作", func() {
			So(IsActionOnly("点头"), ShouldBeTrue)
			So(IsActionOnly("微微点头"), ShouldBeTrue)
			So(IsActionOnly("（微微点头）"), ShouldBeTrue)
			So(IsActionOnly("摇头不语。"), ShouldBeTrue)
			So(IsActionOnly("沉默"), ShouldBeTrue)
			So(IsActionOnly("叹气"), ShouldBeTrue)
			So(IsActionOnly("颔首"), ShouldBeTrue)
			So(IsActionOnly("转身"), ShouldBeTrue)
		})

		Convey("真实台词不会误判", func() {
			So(IsActionOnly("你为什么点头？"), ShouldBeFalse)
			So(IsActionOnly("我今天很开心。"), ShouldBeFalse)
			So(IsActionOnly("他点头之后转身离开了房间，再也没有回来。"), ShouldBeFalse)
		})

		Convey("超过50字一律不算动作描述", func() {
			long := ""
			for i := 0; i < 60; i++ {
				long += "点"
			}
			So(IsActionOnly(long), ShouldBeFalse)
		})

		Convey("空文本视为无可朗读内容", func() {
			So(IsActionOnly(""), ShouldBeTrue)
			So(IsActionOnly("（）"), ShouldBeTrue)
		})
	})
}
