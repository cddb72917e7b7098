package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/handlers"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository/attachment"
	pg "taskmanager/internal/repository/postgres"
	taskinmemory "taskmanager/internal/repository/task/inmemory"
	taskpg "taskmanager/internal/repository/task/postgres"
	userinmemory "taskmanager/internal/repository/user/inmemory"
	userpg "taskmanager/internal/repository/user/postgres"
	"taskmanager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает все зависимости явно: логгер, хранилища, сервисы,
// роутер. Никакого глобального состояния кроме логгера.
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret)
	hasher := auth.NewPasswordHasher(a.config.Auth.BcryptCost)

	var userRepo service.UserRepository
	var taskRepo service.TaskRepository

	switch a.config.Repository.Type {
	case "postgres":
		pool, err := pg.Connect(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула PostgreSQL...")
			pool.Close()
		})

		if err := pg.Migrate(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		userRepo = userpg.New(pool)
		taskRepo = taskpg.New(pool)

	case "inmemory":
		userRepo = userinmemory.NewUserStorage()
		taskRepo = taskinmemory.NewTaskStorage()

	default:
		return fmt.Errorf("неизвестный тип репозитория: %s", a.config.Repository.Type)
	}

	files, err := attachment.NewDiskStore(a.config.Storage.UploadsDir)
	if err != nil {
		return fmt.Errorf("хранилище вложений: %w", err)
	}

	authService := service.NewAuthService(userRepo, hasher, tokens)
	taskService := service.NewTaskService(taskRepo, files)

	a.router = NewRouter(authService, taskService, tokens, a.config.Server.RateLimitRPM)
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	return nil
}

// NewRouter собирает роутер отдельно от App, чтобы те же маршруты
// поднимались в интеграционных тестах
func NewRouter(authService handlers.AuthService, taskService handlers.TaskService, verifier middleware.TokenVerifier, rateLimitRPM int) *chi.Mux {
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
	}))
	if rateLimitRPM > 0 {
		r.Use(middleware.RateLimit(rateLimitRPM))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /auth/register
		r.Post("/login", authHandler.Login)       // POST /auth/login

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(verifier))
			r.Get("/me", authHandler.Me) // GET /auth/me
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))

		r.Get("/", taskHandler.GetTasks)      // GET /tasks
		r.Post("/", taskHandler.PostTask)     // POST /tasks
		r.Get("/stats", taskHandler.GetStats) // GET /tasks/stats

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", taskHandler.UpdateTaskStatus) // PUT /tasks/{id}
			r.Delete("/", taskHandler.DeleteTask)    // DELETE /tasks/{id}

			r.Post("/upload", taskHandler.UploadFile) // POST /tasks/{id}/upload
		})
	})

	r.Get("/health", taskHandler.HealthCheck)

	return r
}

// Run запускает сервер и блокируется до сигнала остановки
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Shutdown(ctx)
		return fmt.Errorf("работа сервера: %w", err)
	case sig := <-stop:
		logger.Info("Получен сигнал остановки", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Контекст приложения отменён")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	a.Shutdown(ctx)
	return nil
}

// Shutdown вызывает хуки освобождения ресурсов в обратном порядке
func (a *App) Shutdown(ctx context.Context) {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = a.shutdowns[:0]
}
