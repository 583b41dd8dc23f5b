package drama

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"shotmove/internal/config"
	"shotmove/internal/model/drama"
	"shotmove/internal/pkg/kling"
)

// fakeKling 可编排失败序列的假生成服务
type fakeKling struct {
	submitErrs []error // 每次提交依次弹出，耗尽后成功
	submits    int
	waitErr    error
}

func (f *fakeKling) CreateTask(ctx context.Context, req *kling.CreateTaskRequest) (*kling.Task, error) {
	f.submits++
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &kling.Task{TaskID: fmt.Sprintf("task-%d", f.submits), TaskStatus: kling.StatusSubmitted}, nil
}

func (f *fakeKling) WaitForTask(ctx context.Context, taskID string, pollInterval time.Duration) (*kling.Task, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &kling.Task{
		TaskID:     taskID,
		TaskStatus: kling.StatusSucceed,
		VideoURL:   "https://cdn.example.com/" + taskID + ".mp4",
	}, nil
}

// fakeDownloader 落盘假分段
type fakeDownloader struct {
	err   error
	calls int
}

func (f *fakeDownloader) DownloadToFile(ctx context.Context, url, outputPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("segment"), 0o644)
}

func fastKlingConfig() config.KlingConfig {
	return config.KlingConfig{
		PollInterval: time.Millisecond,
		SubmitDelay:  time.Millisecond,
		RetryBase:    time.Millisecond,
	}
}

func testShotsAndPlan(n int) ([]drama.Shot, []PlannedShot) {
	shots := make([]drama.Shot, n)
	planned := make([]PlannedShot, n)
	for i := 0; i < n; i++ {
		shots[i] = drama.Shot{Index: i + 1, T2VPrompt: fmt.Sprintf("镜头%d", i+1)}
		planned[i] = PlannedShot{Index: i + 1, TargetSec: 5.0, APIDuration: kling.Duration5}
	}
	return shots, planned
}

func TestGenerator_GenerateAll(t *testing.T) {
	Convey("Generator 逐镜生成", t, func() {
		ctx := context.Background()
		workDir := t.TempDir()

		Convey("全部成功时按序产出分段", func() {
			client := &fakeKling{}
			dl := &fakeDownloader{}
			gen := NewGenerator(fastKlingConfig(), client, dl)
			shots, planned := testShotsAndPlan(3)

			segments, err := gen.GenerateAll(ctx, shots, planned, workDir)

			So(err, ShouldBeNil)
			So(segments, ShouldHaveLength, 3)
			So(segments[0].Index, ShouldEqual, 1)
			So(segments[2].Index, ShouldEqual, 3)
			So(dl.calls, ShouldEqual, 3)
		})

		Convey("并发额度超限时等待重试而不失败", func() {
			limitErr := &kling.APIError{Code: 1303, Message: "parallel task over resource pack limit"}
			client := &fakeKling{submitErrs: []error{limitErr, limitErr, nil}}
			dl := &fakeDownloader{}
			gen := NewGenerator(fastKlingConfig(), client, dl)
			shots, planned := testShotsAndPlan(1)

			segments, err := gen.GenerateAll(ctx, shots, planned, workDir)

			So(err, ShouldBeNil)
			So(segments, ShouldHaveLength, 1)
			So(client.submits, ShouldEqual, 3)
		})

		Convey("非额度类提交错误立刻失败", func() {
			client := &fakeKling{submitErrs: []error{errors.New("invalid prompt")}}
			gen := NewGenerator(fastKlingConfig(), client, &fakeDownloader{})
			shots, planned := testShotsAndPlan(2)

			_, err := gen.GenerateAll(ctx, shots, planned, workDir)

			So(err, ShouldNotBeNil)
			So(client.submits, ShouldEqual, 1)
		})

		Convey("中途镜头失败整批拒绝", func() {
			client := &fakeKling{submitErrs: []error{nil, errors.New("content policy")}}
			gen := NewGenerator(fastKlingConfig(), client, &fakeDownloader{})
			shots, planned := testShotsAndPlan(3)

			segments, err := gen.GenerateAll(ctx, shots, planned, workDir)

			So(err, ShouldNotBeNil)
			So(segments, ShouldBeNil)
		})

		Convey("下载失败同样整批拒绝", func() {
			client := &fakeKling{}
			gen := NewGenerator(fastKlingConfig(), client, &fakeDownloader{err: errors.New("cdn 403")})
			shots, planned := testShotsAndPlan(2)

			_, err := gen.GenerateAll(ctx, shots, planned, workDir)
			So(err, ShouldNotBeNil)
		})

		Convey("镜头与规划长度不一致直接报错", func() {
			gen := NewGenerator(fastKlingConfig(), &fakeKling{}, &fakeDownloader{})
			shots, _ := testShotsAndPlan(2)
			_, planned := testShotsAndPlan(3)

			_, err := gen.GenerateAll(ctx, shots, planned, workDir)
			So(err, ShouldNotBeNil)
		})
	})
}
