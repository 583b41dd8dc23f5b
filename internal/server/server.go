package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "shotmove/docs"
	"shotmove/internal/ai"
	"shotmove/internal/config"
	"shotmove/internal/handler"
	dramaHandler "shotmove/internal/handler/drama"
	"shotmove/internal/pkg/cache"
	"shotmove/internal/pkg/mongodb"
	"shotmove/internal/pkg/storagefactory"
	"shotmove/internal/pkg/tts"
	dramaRepo "shotmove/internal/repository/drama"
	"shotmove/internal/server/middleware"
	dramaService "shotmove/internal/service/drama"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
	drama  *dramaService.Service
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// 初始化 MongoDB (短剧任务持久化依赖它)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选，任务状态快照缓存)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 组装短剧生成服务（需要 MongoDB）
	if mongoClient != nil {
		svc, err := buildDramaService(cfg, mongoClient, redisCache)
		if err != nil {
			return nil, err
		}
		srv.drama = svc
	} else {
		log.Warn().Msg("MongoDB not configured, drama endpoints disabled")
	}

	srv.setupRoutes()

	return srv, nil
}

// buildDramaService 组装短剧生成服务的全部依赖
func buildDramaService(cfg *config.Config, mongoClient *mongodb.Client, redisCache *cache.RedisCache) (*dramaService.Service, error) {
	ctx := context.Background()

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info().Str("type", store.GetStorageType()).Msg("storage initialized")

	var aiClient *ai.Client
	client, err := ai.NewClient(ctx, &cfg.AI)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize AI client, continuing with deterministic fallbacks")
	} else {
		aiClient = client
	}

	var synthesizer tts.Synthesizer
	if err := cfg.ValidateTTS(); err != nil {
		log.Warn().Err(err).Msg("TTS not configured, voice track degrades to silence with estimated durations")
	} else {
		synth, err := tts.NewSynthesizer(cfg.TTS.Engine, tts.Config{
			APIURL:      cfg.TTS.APIURL,
			AccessToken: cfg.TTS.AccessToken,
			AppID:       cfg.TTS.AppID,
			Cluster:     cfg.TTS.Cluster,
			SampleRate:  cfg.TTS.SampleRate,
		})
		if err != nil {
			return nil, err
		}
		synthesizer = synth
	}

	if err := cfg.ValidateKling(); err != nil {
		log.Warn().Err(err).Msg("video generation credentials missing, task creation will be rejected")
	}

	repo := dramaRepo.NewTaskRepo(mongoClient.Database())
	return dramaService.NewService(cfg, repo, redisCache, store, aiClient, synthesizer), nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1
	v1 := s.engine.Group("/api/v1")
	{
		if s.drama != nil {
			dramaHdl := dramaHandler.NewHandler(s.drama)

			v1.POST("/drama/tasks", dramaHdl.CreateTask)
			v1.GET("/drama/tasks", dramaHdl.ListTasks)
			v1.GET("/drama/tasks/:task_id", dramaHdl.GetTask)
			v1.DELETE("/drama/tasks/:task_id", dramaHdl.DeleteTask)
		}
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
