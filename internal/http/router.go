package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/agroconnect/marketplace/internal/config"
	"github.com/agroconnect/marketplace/internal/http/handlers"
	"github.com/agroconnect/marketplace/internal/http/middlewares"
	"github.com/agroconnect/marketplace/internal/observability"
	"github.com/agroconnect/marketplace/internal/repo/postgres"
	"github.com/agroconnect/marketplace/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	cfg config.Config,
	pool *pgxpool.Pool,
	uploads *storage.UploadStore,
	prom *observability.Prom,
	reg *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("agromarket-api"))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.SecurityHeaders())

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

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	cropsRepo := postgres.NewCropsRepo(pool, prom)
	ordersRepo := postgres.NewOrdersRepo(pool, prom)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, log)
	cropsHandler := handlers.NewCropsHandler(cropsRepo, uploads, log)
	ordersHandler := handlers.NewOrdersHandler(ordersRepo, log)

	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Welcome to AgroConnect API")
	})

	// uploaded images, served as-is with no access control
	r.Static(storage.URLPrefix, uploads.Dir())

	authLimiter := middlewares.NewRateLimiter(20, time.Minute)

	api := r.Group("/api")

	api.GET("/test", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "API is working"})
	})

	api.POST("/register", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Register)
	api.POST("/login", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	api.POST("/forgot-password", authLimiter.Middleware(middlewares.KeyByIP), authHandler.ForgotPassword)

	api.POST("/crops", cropsHandler.CreateCrop)
	api.GET("/crops", cropsHandler.ListCrops)
	api.DELETE("/crops/:id", cropsHandler.DeleteCrop)

	api.POST("/orders", ordersHandler.PlaceOrder)
	api.GET("/orders/:userId", ordersHandler.ListForUser)

	return r
}
