// @title Quiz Forge API
// @version 1.0
// @description Generates multiple-choice quizzes from uploaded study material.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8000
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "quiz-forge/cmd/api/docs"
	"quiz-forge/internal/adapter"
	"quiz-forge/internal/adapter/completion"
	"quiz-forge/internal/adapter/extractor"
	"quiz-forge/internal/adapter/quizgen"
	"quiz-forge/internal/cache"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/handler"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/middleware"
	"quiz-forge/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatal("Server exited with error", zap.Error(err))
	}
	logger.Get().Info("Server exited gracefully")
}

func run(cfg *config.Config) error {
	appLogger := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	quizService, err := newQuizService(cfg.LLM)
	if err != nil {
		return err
	}

	var storage fiber.Storage
	if cfg.RateLimit.Max > 0 && cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		redisStorage := adapter.NewRedisStorage(redisClient)
		defer redisStorage.Close()
		storage = redisStorage
		appLogger.Info("Rate limiter uses Redis storage", zap.String("address", cfg.Redis.Address))
	}

	app := newApp(cfg, quizService, storage)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Logger.Env),
			zap.String("llm_driver", cfg.LLM.Driver),
			zap.String("model", cfg.LLM.Model),
		)
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newQuizService wires the extractor, completion driver and parser into the pipeline
func newQuizService(llmCfg config.LLMConfig) (service.QuizService, error) {
	client, err := newCompletionClient(llmCfg)
	if err != nil {
		return nil, err
	}
	parser, err := quizgen.NewResponseParser()
	if err != nil {
		return nil, err
	}
	return service.NewQuizService(extractor.NewTextExtractor(), client, parser), nil
}

func newCompletionClient(llmCfg config.LLMConfig) (domain.CompletionClient, error) {
	switch llmCfg.Driver {
	case config.DriverLangChain:
		return completion.NewLangChainClient(llmCfg, nil)
	case config.DriverHTTP:
		return completion.NewHTTPClient(llmCfg, nil)
	default:
		return nil, fmt.Errorf("unsupported llm driver: %s", llmCfg.Driver)
	}
}

// newApp builds the fiber application. A nil storage keeps rate-limit counters in memory.
func newApp(cfg *config.Config, quizService service.QuizService, storage fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.WriteTimeout,
		BodyLimit:    cfg.BodyLimitBytes(),
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.CORS.AllowOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization," + middleware.RequestIDHeader,
		ExposeHeaders:    middleware.RequestIDHeader,
		AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowOrigins),
		MaxAge:           300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	quizHandler := handler.NewQuizHandler(quizService, int64(cfg.BodyLimitBytes()))
	healthHandler := handler.NewHealthHandler()
	validationMiddleware := middleware.NewValidationMiddleware()

	generateChain := []fiber.Handler{}
	if cfg.RateLimit.Max > 0 {
		generateChain = append(generateChain, middleware.RateLimiter(cfg.RateLimit, storage))
	}
	generateChain = append(generateChain, validationMiddleware.ValidateQuestionCount(), quizHandler.GenerateQuiz)

	apiGroup := app.Group("/api")
	apiGroup.Get("/health", healthHandler.Health)
	apiGroup.Post("/generate-quiz", generateChain...)

	return app
}

// fiber refuses credentials together with a wildcard origin
func allowsAnyOrigin(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}
