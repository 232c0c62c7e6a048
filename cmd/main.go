package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/prepbank/config"
	"github.com/lshigami/prepbank/database"
	_ "github.com/lshigami/prepbank/docs"
	adminctrl "github.com/lshigami/prepbank/internal/controller/admin"
	userctrl "github.com/lshigami/prepbank/internal/controller/user"
	"github.com/lshigami/prepbank/internal/jobs"
	"github.com/lshigami/prepbank/internal/logger"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/lshigami/prepbank/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

// @title Prepbank Practice API
// @version 1.0
// @description Question bank and timed practice attempts with per-question response tracking.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewSectionRepository,
			repository.NewCourseRepository,
			repository.NewQuestionRepository,
			repository.NewOptionRepository,
			repository.NewTestRepository,
			repository.NewUserRepository,
			repository.NewTestAttemptRepository,
			repository.NewQuestionResponseRepository,
		),

		fx.Provide(
			service.NewCatalogService,
			service.NewQuestionService,
			service.NewOptionService,
			service.NewTestService,
			service.NewUserService,
			service.NewAttemptService,
			service.NewGeminiLLMService,
			service.NewExplanationService,
			func(s service.AttemptService) jobs.StaleAttemptCloser { return s },
			jobs.NewAttemptSweeper,
		),

		fx.Provide(
			adminctrl.NewAdminQuestionController,
			adminctrl.NewAdminTestController,
			adminctrl.NewAdminCatalogController,
			userctrl.NewUserTestController,
			userctrl.NewAttemptController,
			userctrl.NewQuestionController,
		),

		fx.Invoke(func(cfg *config.Config) { logger.SetLevel(cfg.LogLevel) }),
		fx.Invoke(database.Migrate),
		fx.Invoke(RegisterRoutes),
		fx.Invoke(StartServer),
		fx.Invoke(jobs.Register),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Failed to stop application cleanly")
	}
}

func NewGinEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.Server.CORSAllowedOrigins) == 0 || cfg.Server.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.Server.CORSAllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	// http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutes(
	router *gin.Engine,
	adminQuestionCtrl *adminctrl.AdminQuestionController,
	adminTestCtrl *adminctrl.AdminTestController,
	adminCatalogCtrl *adminctrl.AdminCatalogController,
	userTestCtrl *userctrl.UserTestController,
	attemptCtrl *userctrl.AttemptController,
	questionCtrl *userctrl.QuestionController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.GET("/questions", adminQuestionCtrl.ListQuestions)
		adminAPIGroup.POST("/questions", adminQuestionCtrl.CreateQuestion)
		adminAPIGroup.GET("/questions/:id", adminQuestionCtrl.GetQuestion)
		adminAPIGroup.PATCH("/questions/:id", adminQuestionCtrl.UpdateQuestion)
		adminAPIGroup.DELETE("/questions/:id", adminQuestionCtrl.DeleteQuestion)
		adminAPIGroup.GET("/question-codes/:code", adminQuestionCtrl.GetQuestionByCode)
		adminAPIGroup.GET("/question-codes/:code/options", adminQuestionCtrl.ListOptions)

		adminAPIGroup.POST("/options", adminQuestionCtrl.CreateOption)
		adminAPIGroup.GET("/options/:id", adminQuestionCtrl.GetOption)
		adminAPIGroup.PATCH("/options/:id", adminQuestionCtrl.UpdateOption)
		adminAPIGroup.DELETE("/options/:id", adminQuestionCtrl.DeleteOption)

		adminAPIGroup.POST("/tests", adminTestCtrl.CreateTest)
		adminAPIGroup.GET("/tests/filters", adminTestCtrl.TestCreationFilters)
		adminAPIGroup.GET("/tests/questions", adminTestCtrl.PreviewTestQuestions)
		adminAPIGroup.POST("/tests/from-filters", adminTestCtrl.CreateTestFromFilters)
		adminAPIGroup.PATCH("/tests/:id", adminTestCtrl.RenameTest)
		adminAPIGroup.DELETE("/tests/:id", adminTestCtrl.DeleteTest)
		adminAPIGroup.POST("/tests/:id/questions", adminTestCtrl.AddQuestions)
		adminAPIGroup.DELETE("/tests/:id/questions", adminTestCtrl.RemoveQuestions)
		adminAPIGroup.GET("/attempts", adminTestCtrl.ListAttempts)

		adminAPIGroup.POST("/sections", adminCatalogCtrl.CreateSection)
		adminAPIGroup.PATCH("/sections/:id", adminCatalogCtrl.UpdateSection)
		adminAPIGroup.DELETE("/sections/:id", adminCatalogCtrl.DeleteSection)
		adminAPIGroup.GET("/courses", adminCatalogCtrl.ListCourses)
		adminAPIGroup.POST("/courses", adminCatalogCtrl.CreateCourse)
		adminAPIGroup.PATCH("/courses/:id", adminCatalogCtrl.UpdateCourse)
		adminAPIGroup.DELETE("/courses/:id", adminCatalogCtrl.DeleteCourse)

		adminAPIGroup.GET("/users", adminCatalogCtrl.ListUsers)
		adminAPIGroup.POST("/users", adminCatalogCtrl.CreateUser)
		adminAPIGroup.GET("/users/:id", adminCatalogCtrl.GetUser)
		adminAPIGroup.PATCH("/users/:id", adminCatalogCtrl.UpdateUser)
		adminAPIGroup.DELETE("/users/:id", adminCatalogCtrl.DeleteUser)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/tests", userTestCtrl.GetAllTests)
		userAPIGroup.GET("/tests/:test_id", userTestCtrl.GetTestDetails)
		userAPIGroup.POST("/tests/:test_id/attempts", userTestCtrl.StartAttempt)

		userAPIGroup.GET("/attempts/:attempt_id", attemptCtrl.GetAttempt)
		userAPIGroup.GET("/attempts/:attempt_id/responses", attemptCtrl.ListResponses)
		userAPIGroup.GET("/attempts/:attempt_id/responses/:question_id", attemptCtrl.GetResponse)
		userAPIGroup.PATCH("/attempts/:attempt_id/responses/:question_id", attemptCtrl.UpdateResponse)
		userAPIGroup.POST("/attempts/:attempt_id/finish", attemptCtrl.FinishAttempt)
		userAPIGroup.GET("/users/:user_id/attempts", attemptCtrl.ListUserAttempts)

		userAPIGroup.GET("/questions", questionCtrl.ListQuestions)
		userAPIGroup.GET("/questions/sets", questionCtrl.QuestionSets)
		userAPIGroup.GET("/questions/filters", questionCtrl.QuestionFilters)
		userAPIGroup.GET("/questions/:id/explanation", questionCtrl.ExplainQuestion)
		userAPIGroup.GET("/sections", questionCtrl.ListSections)
	}
}

// StartServer manages the HTTP server lifecycle.
func StartServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Config) {
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Prepbank API server starting on port %s", cfg.Server.Port)
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
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}
