package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/taskpocket/taskpocket/internal/config"
	"github.com/taskpocket/taskpocket/internal/domain"
	"github.com/taskpocket/taskpocket/internal/engine"
	"github.com/taskpocket/taskpocket/internal/gateway"
	"github.com/taskpocket/taskpocket/internal/handler"
	"github.com/taskpocket/taskpocket/internal/logger"
	"github.com/taskpocket/taskpocket/internal/session"
	"github.com/taskpocket/taskpocket/internal/store"
)

type App struct {
	Echo   *echo.Echo
	Engine engine.Engine
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize the local task store
	st, err := store.NewFileStore(config.DefaultEnvConfig.DATA_DIR)
	if err != nil {
		return fmt.Errorf("failed to initialize local store: %w", err)
	}

	// Initialize collaborators
	sess := session.NewStaticSession(config.DefaultEnvConfig.API_TOKEN, domain.User{
		ID:       config.DefaultEnvConfig.API_USER_ID,
		Username: config.DefaultEnvConfig.API_USERNAME,
	})
	gw := gateway.NewClient(
		config.DefaultEnvConfig.API_BASE_URL,
		time.Duration(config.DefaultEnvConfig.HTTP_TIMEOUT_SECONDS)*time.Second,
	)

	a.Engine = engine.New(sess, gw, st)
	taskHandler := handler.NewTaskHandler(a.Engine)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(taskHandler)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(taskHandler *handler.TaskHandler) {
	a.Echo.GET("/tasks", taskHandler.ListHandler)
	a.Echo.POST("/tasks", taskHandler.CreateHandler)
	a.Echo.PUT("/tasks/:id", taskHandler.UpdateHandler)
	a.Echo.DELETE("/tasks/:id", taskHandler.DeleteHandler)

	a.Echo.GET("/tasks/due", taskHandler.DueHandler)

	a.Echo.POST("/sync", taskHandler.SyncHandler)
	a.Echo.GET("/sync/queue", taskHandler.QueueHandler)

	exportGroup := a.Echo.Group("/export")
	exportGroup.GET("/tasks", taskHandler.ExportTasksHandler)
}

func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
