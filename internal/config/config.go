package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
	Log      LogConfig      `mapstructure:"log"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Kling    KlingConfig    `mapstructure:"kling"`
	TTS      TTSConfig      `mapstructure:"tts"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig LLM 配置（分镜生成、音色/情绪分类）
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai / azure / ark
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig LLM 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`      // 基础路径
	BaseURL       string `mapstructure:"base_url"`       // 基础URL（用于生成访问URL）
	PresignExpiry int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"`
}

// KlingConfig 可灵视频生成 API 配置
type KlingConfig struct {
	BaseURL      string        `mapstructure:"base_url"`      // 默认: https://api-beijing.klingai.com
	AccessKey    string        `mapstructure:"access_key"`    // AK，JWT iss
	SecretKey    string        `mapstructure:"secret_key"`    // SK，JWT 签名密钥
	Model        string        `mapstructure:"model"`         // 默认: kling-v1-6
	Mode         string        `mapstructure:"mode"`          // std / pro
	PollInterval time.Duration `mapstructure:"poll_interval"` // 轮询间隔，默认 8s
	SubmitDelay  time.Duration `mapstructure:"submit_delay"`  // 相邻镜头提交间隔，默认 5s
	RetryBase    time.Duration `mapstructure:"retry_base"`    // 并发超限重试基准等待，默认 30s
}

// TTSConfig TTS 配置
type TTSConfig struct {
	Engine       string `mapstructure:"engine"`        // volcano / basic
	APIURL       string `mapstructure:"api_url"`       // 默认: https://openspeech.bytedance.com/api/v1/tts
	AppID        string `mapstructure:"app_id"`        // 应用ID
	AccessToken  string `mapstructure:"access_token"`  // 访问令牌
	Cluster      string `mapstructure:"cluster"`       // 默认: volcano_tts
	DefaultVoice string `mapstructure:"default_voice"` // 兜底音色
	SampleRate   int    `mapstructure:"sample_rate"`   // 默认: 24000
	Speed        int    `mapstructure:"speed"`         // 基准语速 0-100，默认 50
}

// PipelineConfig 音画对齐流水线参数
type PipelineConfig struct {
	ZhCharsPerSec  float64 `mapstructure:"zh_chars_per_sec"` // 中文语速，默认 4.5 字/秒
	EnWordsPerSec  float64 `mapstructure:"en_words_per_sec"` // 英文语速，默认 2.8 词/秒
	PausePerMark   float64 `mapstructure:"pause_per_mark"`   // 每个标点停顿，默认 0.10s
	TailPadSec     float64 `mapstructure:"tail_pad_sec"`     // 台词结束后的留白，默认 0.25s
	MinShotSec     float64 `mapstructure:"min_shot_sec"`     // 短剧单镜最短时长，默认 2.0s
	MaxShotSec     float64 `mapstructure:"max_shot_sec"`     // 单镜时长上限，默认 10.0s
	ScaleTolerance float64 `mapstructure:"scale_tolerance"`  // 配音总长与成片时长的缩放容差，默认 0.5s
	AlignMode      string  `mapstructure:"align_mode"`       // pad_trim / time_stretch，默认 pad_trim
	Transition     string  `mapstructure:"transition"`       // 转场效果（fade 等），与精确对齐互斥
	SkipNarration  bool    `mapstructure:"skip_narration"`   // 字幕是否跳过旁白行
	AmbientEnabled bool    `mapstructure:"ambient_enabled"`  // 是否混入低音量氛围音
	SfxPath        string  `mapstructure:"sfx_path"`         // 可选音效文件路径
	WorkDir        string  `mapstructure:"work_dir"`         // 运行期工作目录，默认系统临时目录
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Pipeline.AlignMode != "" && c.Pipeline.AlignMode != "pad_trim" && c.Pipeline.AlignMode != "time_stretch" {
		return errors.New("invalid pipeline align_mode, must be pad_trim/time_stretch")
	}

	if c.Pipeline.MaxShotSec > 0 && c.Pipeline.MinShotSec > c.Pipeline.MaxShotSec {
		return errors.New("pipeline min_shot_sec must not exceed max_shot_sec")
	}

	return nil
}

// ValidateKling 校验视频生成凭证，流水线启动前调用，避免跑到下游才失败
func (c *Config) ValidateKling() error {
	if c.Kling.AccessKey == "" || c.Kling.SecretKey == "" {
		return errors.New("kling access_key/secret_key is required for video generation")
	}
	return nil
}

// ValidateTTS 校验 TTS 凭证；未配置时流水线退化为估算时长+静音轨
func (c *Config) ValidateTTS() error {
	if c.TTS.AccessToken == "" {
		return errors.New("tts access_token is required")
	}
	return nil
}
