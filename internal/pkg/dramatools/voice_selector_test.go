package dramatools

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// mockClassifier 用于测试的 mock 音色分类器
type mockClassifier struct {
	suggestFunc func(ctx context.Context, line, characterName, scriptContext string) (string, error)
	calls       int
}

func (m *mockClassifier) SuggestVoice(ctx context.Context, line, characterName, scriptContext string) (string, error) {
	m.calls++
	if m.suggestFunc != nil {
		return m.suggestFunc(ctx, line, characterName, scriptContext)
	}
	return "", errors.New("mock suggest function not set")
}

func testVoiceGenders() map[string]string {
	return map[string]string{
		DefaultFemaleVoice: GenderFemale,
		DefaultMaleVoice:   GenderMale,
		"female-tianmei":   GenderFemale,
		"male-chunhou":     GenderMale,
	}
}

func TestVoiceSelector_SelectVoice(t *testing.T) {
	Convey("VoiceSelector 选择音色", t, func() {
		ctx := context.Background()

		Convey("同一角色多镜头返回相同音色，分类器只调用一次", func() {
			classifier := &mockClassifier{
				suggestFunc: func(ctx context.Context, line, characterName, scriptContext string) (string, error) {
					return "female-tianmei", nil
				},
			}
			selector := NewVoiceSelector(classifier, testVoiceGenders())
			cache := NewVoiceCache()

			first := selector.SelectVoice(ctx, "李华：你来了。", "李华", "剧本摘要", cache)
			second := selector.SelectVoice(ctx, "李华：坐吧。", "李华", "剧本摘要", cache)
			third := selector.SelectVoice(ctx, "李华：喝茶。", "李华", "剧本摘要", cache)

			So(first, ShouldEqual, "female-tianmei")
			So(second, ShouldEqual, first)
			So(third, ShouldEqual, first)
			So(classifier.calls, ShouldEqual, 1)
		})

		Convey("分类器建议与称谓性别矛盾时拒绝并替换", func() {
			classifier := &mockClassifier{
				suggestFunc: func(ctx context.Context, line, characterName, scriptContext string) (string, error) {
					return "male-chunhou", nil // 给「柳小姐」建议男声
				},
			}
			selector := NewVoiceSelector(classifier, testVoiceGenders())
			cache := NewVoiceCache()

			voice := selector.SelectVoice(ctx, "柳小姐：放肆。", "柳小姐", "", cache)
			So(voice, ShouldEqual, DefaultFemaleVoice)
		})

		Convey("分类器失败时走启发式兜底", func() {
			classifier := &mockClassifier{} // 永远返回错误
			selector := NewVoiceSelector(classifier, testVoiceGenders())
			cache := NewVoiceCache()

			So(selector.SelectVoice(ctx, "少爷请留步。", "王少爷", "", cache), ShouldEqual, DefaultMaleVoice)
			So(selector.SelectVoice(ctx, "夫人慢走。", "张夫人", "", cache), ShouldEqual, DefaultFemaleVoice)
		})

		Convey("无分类器时纯启发式可用", func() {
			selector := NewVoiceSelector(nil, testVoiceGenders())
			cache := NewVoiceCache()

			So(selector.SelectVoice(ctx, "", "翠兰", "", cache), ShouldEqual, DefaultFemaleVoice)
			So(selector.SelectVoice(ctx, "", "铁柱", "", cache), ShouldEqual, DefaultMaleVoice)
		})

		Convey("不同运行的缓存互不影响", func() {
			classifier := &mockClassifier{
				suggestFunc: func(ctx context.Context, line, characterName, scriptContext string) (string, error) {
					return "female-tianmei", nil
				},
			}
			selector := NewVoiceSelector(classifier, testVoiceGenders())

			cacheA := NewVoiceCache()
			cacheB := NewVoiceCache()
			selector.SelectVoice(ctx, "你好。", "李华", "", cacheA)
			So(cacheA.Len(), ShouldEqual, 1)
			So(cacheB.Len(), ShouldEqual, 0)
		})

		Convey("无角色名时从上下文推断，不会失败", func() {
			selector := NewVoiceSelector(nil, testVoiceGenders())
			cache := NewVoiceCache()

			voice := selector.SelectVoice(ctx, "这位公子看起来气度不凡。", "", "公子进京赶考", cache)
			So(voice, ShouldEqual, DefaultMaleVoice)
			// 无角色名不写缓存
			So(cache.Len(), ShouldEqual, 0)
		})
	})
}

func TestGuessGenderFromName(t *testing.T) {
	Convey("GuessGenderFromName 名字性别启发式", t, func() {
		Convey("已知名字表优先", func() {
			So(GuessGenderFromName("翠兰"), ShouldEqual, GenderFemale)
			So(GuessGenderFromName("铁柱"), ShouldEqual, GenderMale)
		})

		Convey("称谓关键词判定", func() {
			So(GuessGenderFromName("柳小姐"), ShouldEqual, GenderFemale)
			So(GuessGenderFromName("苏姑娘"), ShouldEqual, GenderFemale)
			So(GuessGenderFromName("王少爷"), ShouldEqual, GenderMale)
			So(GuessGenderFromName("李师兄"), ShouldEqual, GenderMale)
		})

		Convey("无法判断返回空串", func() {
			So(GuessGenderFromName("辰星"), ShouldEqual, "")
			So(GuessGenderFromName(""), ShouldEqual, "")
		})
	})
}
