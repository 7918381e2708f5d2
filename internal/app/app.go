package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fitshare/auth-service/internal/config"
	"github.com/fitshare/auth-service/internal/handler"
	"github.com/fitshare/auth-service/internal/provider"
	"github.com/fitshare/auth-service/internal/repository"
	"github.com/fitshare/auth-service/internal/service"
	"github.com/fitshare/auth-service/internal/token"
	"github.com/fitshare/auth-service/pkg/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres(), infra.Redis())

	issuer, err := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	providers, err := newProviderRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewAuthMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("failed to register auth metrics: %w", err)
	}

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(map[string]Pinger{
		"postgres": infra.Postgres(),
		"redis":    infra.Redis(),
	})

	authService := service.NewAuthService(
		providers,
		repos.Users,
		repos.RefreshTokens,
		issuer,
		metrics,
		logger,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	authHandler := handler.NewAuthHandler(authService, logger, cfg.JWT.RefreshTokenExpiry.Duration)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, logger, authHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

// newProviderRegistry registers every provider with a client id configured.
func newProviderRegistry(cfg *config.Config, logger *zap.Logger) (*provider.Registry, error) {
	kakao := provider.Kakao(cfg.Kakao.ClientID, cfg.OAuth.RedirectURI)
	kakao.TokenURL = cfg.Kakao.TokenURL
	kakao.ProfileURL = cfg.Kakao.ProfileURL

	naver := provider.Naver(cfg.Naver.ClientID, cfg.Naver.ClientSecret)
	naver.TokenURL = cfg.Naver.TokenURL
	naver.ProfileURL = cfg.Naver.ProfileURL

	timeout := cfg.OAuth.HTTPTimeout.Duration
	httpClient := &http.Client{Timeout: timeout}

	var clients []provider.Client
	for _, pc := range []provider.Config{kakao, naver} {
		if pc.ClientID == "" {
			logger.Warn("Identity provider disabled: client id not configured", zap.String("provider", string(pc.Name)))
			continue
		}

		client, err := provider.New(pc, httpClient, timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to configure %s provider: %w", pc.Name, err)
		}
		clients = append(clients, client)
	}

	return provider.NewRegistry(clients...), nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/:provider/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.RateLimit.Requests, cfg.RateLimit.Window.Duration, handler.ProviderAndIPKey, logger),
				authHandler.Login,
			)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// Shutdown drains in-flight requests before closing the connection pools.
func (a *App) Shutdown() error {
	logger := a.infra.Logger()
	logger.Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	serverErr := a.server.Shutdown(ctx)
	if serverErr != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(serverErr))
	}

	logger.Info("Application exited")

	return errors.Join(serverErr, a.infra.Shutdown(ctx))
}
