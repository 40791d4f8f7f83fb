package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lamdang/quizforge/config"
	_ "github.com/lamdang/quizforge/docs" // Swagger docs - auto-generated
	"github.com/lamdang/quizforge/internal/cache"
	"github.com/lamdang/quizforge/internal/controller"
	"github.com/lamdang/quizforge/internal/database"
	"github.com/lamdang/quizforge/internal/logger"
	"github.com/lamdang/quizforge/internal/middleware"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/lamdang/quizforge/internal/notifier"
	"github.com/lamdang/quizforge/internal/repository"
	"github.com/lamdang/quizforge/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quizforge API
// @version 1.0
// @description Adaptive quiz generation and assessment engine with AI-generated questions, scoring, retries and leaderboards.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			cache.NewService,
			notifier.NewSendGridNotifier,
			NewGinEngine, // Provides *gin.Engine
		),

		// Repositories layer
		fx.Provide(
			repository.NewUserRepository,
			repository.NewQuizRepository,
			repository.NewSubmissionRepository,
			repository.NewPerformanceRepository,
		),

		// Services layer
		fx.Provide(
			service.NewScoringService,
			service.NewDifficultyService,
			service.NewGeminiOracleService,
			service.NewQuizService,
			service.NewLeaderboardService,
			service.NewAuthService,
		),

		// API controllers layer
		fx.Provide(
			controller.NewQuizController,
			controller.NewLeaderboardController,
			controller.NewAuthController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Request logging through zerolog instead of Gin's default logger.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	cacheSvc cache.Service,
	authCtrl *controller.AuthController,
	quizCtrl *controller.QuizController,
	leaderboardCtrl *controller.LeaderboardController,
) {
	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authCtrl.Register)
		authGroup.POST("/login", authCtrl.Login)
	}

	quizGroup := api.Group("/quiz", middleware.Authenticate(cfg))
	{
		quizGroup.POST("/generate", quizCtrl.Generate)
		quizGroup.POST("/submit", quizCtrl.Submit)
		quizGroup.POST("/retry", quizCtrl.Retry)
		quizGroup.POST("/hint", quizCtrl.Hint)
		quizGroup.GET("/history", quizCtrl.History)
		quizGroup.GET("/leaderboard", leaderboardCtrl.Top)
		quizGroup.GET("/:quiz_id", quizCtrl.GetQuiz)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quizforge API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = cacheSvc.Close()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.Submission{},
		&model.UserPerformance{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
