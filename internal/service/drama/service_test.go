package drama

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"shotmove/internal/config"
	"shotmove/internal/model/drama"
)

// stubTaskRepo 只记录写入的任务仓库
type stubTaskRepo struct {
	created []*drama.Task
}

func (r *stubTaskRepo) Create(ctx context.Context, task *drama.Task) error {
	r.created = append(r.created, task)
	return nil
}

func (r *stubTaskRepo) FindByID(ctx context.Context, id string) (*drama.Task, error) {
	return nil, errors.New("not found")
}

func (r *stubTaskRepo) List(ctx context.Context, status string, page, pageSize int) ([]*drama.Task, int64, error) {
	return nil, 0, nil
}

func (r *stubTaskRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (r *stubTaskRepo) UpdateStatus(ctx context.Context, id, status, errorMessage string) error {
	return nil
}

func (r *stubTaskRepo) UpdateShots(ctx context.Context, id string, shots []drama.Shot) error {
	return nil
}

func (r *stubTaskRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func testServiceConfig() *config.Config {
	return &config.Config{
		Kling:    config.KlingConfig{AccessKey: "ak", SecretKey: "sk"},
		TTS:      config.TTSConfig{Speed: 50},
		Pipeline: testPipelineConfig(),
	}
}

func TestService_CreateTask(t *testing.T) {
	Convey("CreateTask 受理任务", t, func() {
		req := &CreateTaskRequest{Title: "重生之都市修仙", Script: "林风：我回来了。"}

		Convey("生成凭证缺失时受理前拒绝，不落库", func() {
			cfg := testServiceConfig()
			cfg.Kling.AccessKey = ""
			cfg.Kling.SecretKey = ""
			repo := &stubTaskRepo{}
			svc := NewService(cfg, repo, nil, nil, nil, nil)

			task, err := svc.CreateTask(context.Background(), req)

			So(task, ShouldBeNil)
			So(errors.Is(err, ErrGenerationNotConfigured), ShouldBeTrue)
			So(repo.created, ShouldBeEmpty)
		})

		Convey("凭证齐全时落库并返回 pending 任务", func() {
			repo := &stubTaskRepo{}
			svc := NewService(testServiceConfig(), repo, nil, nil, nil, nil)

			task, err := svc.CreateTask(context.Background(), req)

			So(err, ShouldBeNil)
			So(task.Status, ShouldEqual, drama.StatusPending)
			So(task.ID, ShouldNotBeEmpty)
			So(repo.created, ShouldHaveLength, 1)
		})
	})
}
