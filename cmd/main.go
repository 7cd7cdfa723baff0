package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/config"
	"github.com/xiabytes/chatX/internal/cache"
	"github.com/xiabytes/chatX/internal/handlers"
	"github.com/xiabytes/chatX/internal/kafka"
	"github.com/xiabytes/chatX/internal/middleware"
	"github.com/xiabytes/chatX/internal/repository"
	"github.com/xiabytes/chatX/internal/routes"
	"github.com/xiabytes/chatX/internal/service"
	"github.com/xiabytes/chatX/internal/storage"
	"github.com/xiabytes/chatX/internal/ws"
	"github.com/xiabytes/chatX/pkg/logger"
	"github.com/xiabytes/chatX/pkg/metrics"
)

// Server holds service dependencies.
type Server struct {
	Cfg       *config.Config
	App       *fiber.App
	Log       *zap.SugaredLogger
	Store     *repository.MongoStore
	Redis     *cache.Client
	KafkaProd *kafka.Producer
	Hub       *ws.Hub

	Ctx    context.Context
	Cancel context.CancelFunc
}

// NewServer builds the server and all dependencies. Redis, kafka and S3 are
// optional; the chat core runs without them.
func NewServer(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	store, err := repository.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		cancel()
		return nil, err
	}

	hub := ws.NewHub()
	notifiers := service.MultiNotifier{hub}

	var redisClient *cache.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPwd, cfg.RedisDB, log)
		if err != nil {
			cancel()
			return nil, err
		}
		notifiers = append(notifiers, redisClient)
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		notifiers = append(notifiers, producer)
	}

	var verifier *middleware.Verifier
	switch {
	case cfg.JWTPublicKeyPath != "":
		verifier, err = middleware.NewVerifierFromPEM(cfg.JWTPublicKeyPath)
		if err != nil {
			cancel()
			return nil, err
		}
	case cfg.JWTSecret != "":
		verifier = middleware.NewHMACVerifier([]byte(cfg.JWTSecret))
	default:
		cancel()
		return nil, errors.New("either JWT_PUBLIC_KEY_PATH or JWT_SECRET must be configured")
	}

	validate := validator.New()
	userSvc := service.NewUserService(store, log)
	convSvc := service.NewConversationService(store, notifiers, log)
	msgSvc := service.NewMessageService(store, notifiers, log)

	var mediaHandler *handlers.MediaHandler
	if cfg.S3Bucket != "" {
		objects, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Endpoint, cfg.S3PublicRead)
		if err != nil {
			cancel()
			return nil, err
		}
		presignTTL := time.Duration(cfg.S3PresignTTLSeconds) * time.Second
		mediaSvc := service.NewMediaService(store, objects, storage.Thumbnail, presignTTL, log)
		mediaHandler = handlers.NewMediaHandler(mediaSvc, validate)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(middleware.Recovery(log))
	app.Use(middleware.Logger(log))
	app.Use(metrics.Middleware())

	routes.Register(app, routes.Deps{
		Users:         handlers.NewUserHandler(userSvc, validate),
		Conversations: handlers.NewConversationHandler(convSvc, validate),
		Messages:      handlers.NewMessageHandler(msgSvc, validate),
		Media:         mediaHandler,
		Hub:           hub,
		JWT:           middleware.JWTAuth(verifier),
		Log:           log,
	})

	return &Server{
		Cfg:       cfg,
		App:       app,
		Log:       log,
		Store:     store,
		Redis:     redisClient,
		KafkaProd: producer,
		Hub:       hub,
		Ctx:       ctx,
		Cancel:    cancel,
	}, nil
}

// Start runs background workers and the HTTP server.
func (s *Server) Start() {
	// events from other instances get re-broadcast into the local hub
	if s.Redis != nil {
		go s.Redis.Subscribe(s.Ctx, func(ev service.Event) {
			s.Hub.Notify(s.Ctx, ev)
		})
	}

	go func() {
		s.Log.Infof("starting chatX on :%s", s.Cfg.AppPort)
		if err := s.App.Listen(":" + s.Cfg.AppPort); err != nil {
			s.Log.Fatalw("server exited unexpectedly", "error", err)
		}
	}()
}

// Shutdown stops background workers and closes clients in order.
func (s *Server) Shutdown() {
	s.Log.Info("shutting down chatX...")
	s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), s.Cfg.ShutdownTimeout)
	defer cancel()

	if err := s.App.ShutdownWithContext(ctx); err != nil {
		s.Log.Errorw("failed to shutdown http server", "error", err)
	}
	s.Hub.Close()
	if s.KafkaProd != nil {
		if err := s.KafkaProd.Close(); err != nil {
			s.Log.Errorw("failed to close kafka producer", "error", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Log.Errorw("failed to close redis", "error", err)
		}
	}
	if err := s.Store.Disconnect(ctx); err != nil {
		s.Log.Errorw("failed to disconnect mongo", "error", err)
	}
	s.Log.Info("chatX stopped gracefully")
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Development: cfg.AppEnv == "development"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	server, err := NewServer(cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize server", "error", err)
	}
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received signal %s, starting graceful shutdown", sig)

	server.Shutdown()
}
