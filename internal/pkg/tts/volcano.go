package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"shotmove/internal/pkg/id"
)

const (
	defaultAPIURL  = "https://openspeech.bytedance.com/api/v1/tts"
	defaultCluster = "volcano_tts"

	// 接口成功码
	successCode = 3000
)

// Config TTS 引擎配置
type Config struct {
	APIURL      string
	AccessToken string // 必需
	AppID       string
	Cluster     string
	SampleRate  int
}

// VolcanoEngine 火山引擎 TTS
// 支持按音色能力携带情绪参数，不支持的音色自动降级为中性合成
type VolcanoEngine struct {
	apiURL      string
	accessToken string
	appID       string
	cluster     string
	sampleRate  int
	withEmotion bool
	httpClient  *http.Client
}

// NewVolcanoEngine 创建火山引擎 TTS
func NewVolcanoEngine(config Config) (*VolcanoEngine, error) {
	return newEngine(config, true)
}

// NewBasicEngine 创建基础引擎
// 同一接口但从不携带情绪参数，用于情绪能力未开通的账号
func NewBasicEngine(config Config) (*VolcanoEngine, error) {
	return newEngine(config, false)
}

func newEngine(config Config, withEmotion bool) (*VolcanoEngine, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("TTS access token is required")
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	cluster := config.Cluster
	if cluster == "" {
		cluster = defaultCluster
	}
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = 24000
	}

	return &VolcanoEngine{
		apiURL:      apiURL,
		accessToken: config.AccessToken,
		appID:       config.AppID,
		cluster:     cluster,
		sampleRate:  sampleRate,
		withEmotion: withEmotion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Synthesize 合成单句台词
func (e *VolcanoEngine) Synthesize(ctx context.Context, req *Request) (*Result, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if req.Voice == "" {
		return nil, fmt.Errorf("voice is required")
	}

	requestID := id.New()
	reqBody, err := json.Marshal(e.buildRequestConfig(req, requestID))
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, io.NopCloser(
		&requestBodyReader{data: reqBody}))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer; %s", e.accessToken))
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug().
		Str("request_id", requestID).
		Str("voice", req.Voice).
		Str("emotion", req.Emotion).
		Int("speed", req.Speed).
		Msg("发送 TTS 合成请求")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send tts request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts request failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var apiResp map[string]interface{}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse tts response: %w", err)
	}

	code, _ := apiResp["code"].(float64)
	if code != successCode {
		message, _ := apiResp["message"].(string)
		if message == "" {
			message = "unknown error"
		}
		return nil, fmt.Errorf("tts api error: %s (code: %.0f)", message, code)
	}

	audioDataBase64, ok := apiResp["data"].(string)
	if !ok {
		return nil, fmt.Errorf("audio data not found in tts response")
	}
	audioData, err := base64.StdEncoding.DecodeString(audioDataBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio data: %w", err)
	}

	return &Result{
		AudioData:   audioData,
		DurationSec: parseDurationSec(apiResp),
	}, nil
}

// buildRequestConfig 构建请求体
// 参考官方文档: https://openspeech.bytedance.com/api/v1/tts
func (e *VolcanoEngine) buildRequestConfig(req *Request, requestID string) map[string]interface{} {
	appConfig := map[string]interface{}{
		"token":   e.accessToken,
		"cluster": e.cluster,
	}
	if e.appID != "" {
		appConfig["appid"] = e.appID
	}

	audioConfig := map[string]interface{}{
		"voice_type":       req.Voice,
		"encoding":         "mp3",
		"compression_rate": 1,
		"rate":             e.sampleRate,
		"speed_ratio":      SpeedRatio(req.Speed),
		"volume_ratio":     1.0,
		"pitch_ratio":      1.0,
		"language":         "cn",
	}
	if e.withEmotion && SupportsEmotion(req.Voice, req.Emotion) {
		audioConfig["emotion"] = req.Emotion
		audioConfig["enable_emotion"] = true
	}

	requestConfig := map[string]interface{}{
		"reqid":            requestID,
		"text":             req.Text,
		"text_type":        "plain",
		"operation":        "query",
		"silence_duration": "125",
	}

	return map[string]interface{}{
		"app":     appConfig,
		"user":    map[string]interface{}{"uid": requestID},
		"audio":   audioConfig,
		"request": requestConfig,
	}
}

// parseDurationSec 从 addition.duration 提取实测时长（接口返回毫秒）
func parseDurationSec(apiResp map[string]interface{}) float64 {
	addition, ok := apiResp["addition"].(map[string]interface{})
	if !ok {
		return 0
	}

	switch v := addition["duration"].(type) {
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed / 1000.0
		}
	case float64:
		return v / 1000.0
	}

	return 0
}

// requestBodyReader 用于支持多次读取请求体
type requestBodyReader struct {
	data []byte
	pos  int
}

func (r *requestBodyReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
