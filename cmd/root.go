package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shotmove/internal/config"
	"shotmove/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shotmove",
	Short: "ShotMove - short drama video generation service",
	Long: `ShotMove turns a drama script into a finished short video:
storyboard, per-shot video generation, per-shot voiceover, and an
audio-visual aligned composite with burned-in subtitles.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.shotmove")
	}

	// 环境变量设置
	viper.SetEnvPrefix("SHOTMOVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	// AI
	viper.SetDefault("ai.provider", "ark")
	viper.SetDefault("ai.model", "doubao-seed-1-6-flash-250615")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 4096)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "shotmove")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// Kling
	viper.SetDefault("kling.base_url", "https://api-beijing.klingai.com")
	viper.SetDefault("kling.model", "kling-v1-6")
	viper.SetDefault("kling.mode", "std")
	viper.SetDefault("kling.poll_interval", "8s")
	viper.SetDefault("kling.submit_delay", "5s")
	viper.SetDefault("kling.retry_base", "30s")

	// TTS
	viper.SetDefault("tts.engine", "volcano")
	viper.SetDefault("tts.api_url", "https://openspeech.bytedance.com/api/v1/tts")
	viper.SetDefault("tts.cluster", "volcano_tts")
	viper.SetDefault("tts.sample_rate", 24000)
	viper.SetDefault("tts.speed", 50)

	// Pipeline
	viper.SetDefault("pipeline.zh_chars_per_sec", 4.5)
	viper.SetDefault("pipeline.en_words_per_sec", 2.8)
	viper.SetDefault("pipeline.pause_per_mark", 0.10)
	viper.SetDefault("pipeline.tail_pad_sec", 0.25)
	viper.SetDefault("pipeline.min_shot_sec", 2.0)
	viper.SetDefault("pipeline.max_shot_sec", 10.0)
	viper.SetDefault("pipeline.scale_tolerance", 0.5)
	viper.SetDefault("pipeline.align_mode", "pad_trim")
	viper.SetDefault("pipeline.skip_narration", false)
	viper.SetDefault("pipeline.ambient_enabled", false)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
