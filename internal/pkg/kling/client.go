// Package kling 可灵（Kling）文生视频 API 客户端
package kling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// API 只接受离散时长档位
const (
	Duration5  = "5"
	Duration10 = "10"

	// 规划时长超过该值时 5 秒档必然装不下，换 10 秒档
	snapThresholdSec = 7.0

	tokenTTL  = 30 * time.Minute
	tokenSkew = 5 * time.Second
)

// 任务状态
const (
	StatusSubmitted  = "submitted"
	StatusProcessing = "processing"
	StatusSucceed    = "succeed"
	StatusFailed     = "failed"
)

// SnapDuration 把规划时长吸附到 API 支持的档位
func SnapDuration(targetSec float64) string {
	if targetSec >= snapThresholdSec {
		return Duration10
	}
	return Duration5
}

// DurationSec 档位对应的名义秒数
func DurationSec(duration string) float64 {
	if duration == Duration10 {
		return 10.0
	}
	return 5.0
}

// Client Kling API 客户端
type Client struct {
	baseURL    string
	accessKey  string
	secretKey  string
	model      string
	mode       string
	httpClient *http.Client
}

// NewClient 创建 Kling 客户端
func NewClient(baseURL, accessKey, secretKey, model, mode string) *Client {
	if baseURL == "" {
		baseURL = "https://api-beijing.klingai.com"
	}
	if model == "" {
		model = "kling-v1-6"
	}
	if mode == "" {
		mode = "std"
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		secretKey: secretKey,
		model:     model,
		mode:      mode,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateTaskRequest 文生视频任务参数
type CreateTaskRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Duration       string `json:"duration"` // "5" / "10"
	AspectRatio    string `json:"aspect_ratio,omitempty"`
}

// Task 任务详情
type Task struct {
	TaskID        string `json:"task_id"`
	TaskStatus    string `json:"task_status"`
	TaskStatusMsg string `json:"task_status_msg"`
	VideoURL      string `json:"-"`
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type taskData struct {
	TaskID        string `json:"task_id"`
	TaskStatus    string `json:"task_status"`
	TaskStatusMsg string `json:"task_status_msg"`
	TaskResult    *struct {
		Videos []struct {
			URL      string `json:"url"`
			Duration string `json:"duration"`
		} `json:"videos"`
	} `json:"task_result"`
}

// apiToken 生成接口鉴权 JWT
// iss 为 AK，有效期 30 分钟，nbf 提前 5 秒容忍时钟偏差
func (c *Client) apiToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.accessKey,
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		NotBefore: jwt.NewNumericDate(now.Add(-tokenSkew)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.secretKey))
}

// CreateTask 提交文生视频任务
func (c *Client) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	if req.Duration != Duration5 && req.Duration != Duration10 {
		return nil, fmt.Errorf("unsupported duration enum: %q", req.Duration)
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "9:16"
	}

	body := map[string]interface{}{
		"model_name":   c.model,
		"mode":         c.mode,
		"prompt":       req.Prompt,
		"duration":     req.Duration,
		"aspect_ratio": req.AspectRatio,
	}
	if req.NegativePrompt != "" {
		body["negative_prompt"] = req.NegativePrompt
	}

	var data taskData
	if err := c.doRequest(ctx, http.MethodPost, "/v1/videos/text2video", body, &data); err != nil {
		return nil, err
	}

	log.Info().
		Str("task_id", data.TaskID).
		Str("duration", req.Duration).
		Msg("视频生成任务已提交")

	return &Task{TaskID: data.TaskID, TaskStatus: data.TaskStatus}, nil
}

// GetTask 查询任务状态
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var data taskData
	path := fmt.Sprintf("/v1/videos/text2video/%s", taskID)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	task := &Task{
		TaskID:        data.TaskID,
		TaskStatus:    data.TaskStatus,
		TaskStatusMsg: data.TaskStatusMsg,
	}
	if data.TaskResult != nil && len(data.TaskResult.Videos) > 0 {
		task.VideoURL = data.TaskResult.Videos[0].URL
	}

	return task, nil
}

// WaitForTask 轮询直到任务终态
// 不设总时长上限，生成慢不等于生成失败，中途放弃只会浪费资源包；
// 单次查询的瞬时失败有界重试，不会因为一次网络抖动丢掉整个镜头
func (c *Client) WaitForTask(ctx context.Context, taskID string, pollInterval time.Duration) (*Task, error) {
	if pollInterval <= 0 {
		pollInterval = 8 * time.Second
	}

	consecutiveErrs := 0
	for {
		task, err := c.GetTask(ctx, taskID)
		if err != nil {
			consecutiveErrs++
			if consecutiveErrs > 3 {
				return nil, fmt.Errorf("poll task %s: %w", taskID, err)
			}
			log.Warn().Err(err).Str("task_id", taskID).Int("errors", consecutiveErrs).Msg("查询任务状态失败，继续轮询")
		} else {
			consecutiveErrs = 0
			switch task.TaskStatus {
			case StatusSucceed:
				if task.VideoURL == "" {
					return nil, fmt.Errorf("task %s succeed but no video url", taskID)
				}
				return task, nil
			case StatusFailed:
				return nil, fmt.Errorf("task %s failed: %s", taskID, task.TaskStatusMsg)
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// APIError 接口返回的业务错误
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kling api error: code=%d message=%s", e.Code, e.Message)
}

// IsResourceLimitError 判断是否"并发任务超出资源包额度"
// 这类错误随着在途任务完成必然恢复，调用方应等待重试而不是失败
func IsResourceLimitError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "parallel task over resource pack limit")
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	token, err := c.apiToken()
	if err != nil {
		return fmt.Errorf("sign api token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if apiResp.Code != 0 {
		return &APIError{Code: apiResp.Code, Message: apiResp.Message}
	}

	if out != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}

	return nil
}
