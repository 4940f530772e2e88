package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/arabian-ops/login-project/internal/auth"
	"github.com/arabian-ops/login-project/internal/config"
	"github.com/arabian-ops/login-project/internal/http/handlers"
	"github.com/arabian-ops/login-project/internal/http/middlewares"
	"github.com/arabian-ops/login-project/internal/observability"
	"github.com/arabian-ops/login-project/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "login-project"

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware(serviceName))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	tasksHandler := handlers.NewTasksHandler(usersRepo, tasksRepo)

	// registration/login take the brunt of abuse, so they get the limiter
	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Duration(cfg.AuthRateWindowSeconds)*time.Second)

	authGroup := r.Group("/auth", limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authMW := middlewares.NewAuthMiddleware(jwtManager)

	tasksGroup := r.Group("/tasks", authMW.RequireAuth())
	tasksGroup.GET("", tasksHandler.ListTasks)
	tasksGroup.POST("", tasksHandler.CreateTask)
	tasksGroup.PATCH("/:id", tasksHandler.UpdateTask)
	tasksGroup.PATCH("/:id/toggle", tasksHandler.ToggleTask)
	tasksGroup.DELETE("/:id", tasksHandler.DeleteTask)

	return r
}
