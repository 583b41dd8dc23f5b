package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPolicy_Do(t *testing.T) {
	Convey("Policy 重试策略", t, func() {
		ctx := context.Background()

		Convey("成功时只执行一次", func() {
			calls := 0
			p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
			err := p.Do(ctx, "test", func() error {
				calls++
				return nil
			}, nil)
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
		})

		Convey("可重试错误重试到成功", func() {
			calls := 0
			p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}
			err := p.Do(ctx, "test", func() error {
				calls++
				if calls < 3 {
					return errors.New("transient")
				}
				return nil
			}, func(error) bool { return true })
			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("不可重试错误立刻返回", func() {
			calls := 0
			fatal := errors.New("fatal")
			p := Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}
			err := p.Do(ctx, "test", func() error {
				calls++
				return fatal
			}, func(error) bool { return false })
			So(err, ShouldEqual, fatal)
			So(calls, ShouldEqual, 1)
		})

		Convey("有界策略达到上限后返回最后的错误", func() {
			calls := 0
			p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
			err := p.Do(ctx, "test", func() error {
				calls++
				return errors.New("still failing")
			}, func(error) bool { return true })
			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 3)
		})

		Convey("无界策略被 ctx 取消时返回 ctx 错误", func() {
			cctx, cancel := context.WithCancel(ctx)
			p := Policy{Unbounded: true, BaseDelay: 50 * time.Millisecond}
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
			err := p.Do(cctx, "test", func() error {
				return errors.New("resource busy")
			}, func(error) bool { return true })
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestPolicy_Delay(t *testing.T) {
	Convey("Delay 线性退避", t, func() {
		p := Policy{BaseDelay: 30 * time.Second}
		So(p.Delay(0), ShouldEqual, 30*time.Second)
		So(p.Delay(1), ShouldEqual, 60*time.Second)
		So(p.Delay(2), ShouldEqual, 90*time.Second)
	})
}
