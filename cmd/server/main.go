package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hntran/reelist/adapters/catalog"
	"github.com/hntran/reelist/adapters/event"
	httpAdapter "github.com/hntran/reelist/adapters/http"
	"github.com/hntran/reelist/adapters/localstore"
	"github.com/hntran/reelist/adapters/persistence"
	"github.com/hntran/reelist/internal/application/store/collectionstore"
	"github.com/hntran/reelist/internal/application/store/reviewstore"
	adminUC "github.com/hntran/reelist/internal/application/usecase/admin"
	authUC "github.com/hntran/reelist/internal/application/usecase/auth"
	shareUC "github.com/hntran/reelist/internal/application/usecase/share"
	viewsUC "github.com/hntran/reelist/internal/application/usecase/views"
	"github.com/hntran/reelist/internal/config"
	"github.com/hntran/reelist/internal/domain/session"
	"github.com/hntran/reelist/pkg/auth"
	"github.com/hntran/reelist/pkg/logger"
	"github.com/hntran/reelist/pkg/tracing"
)

func main() {
	fmt.Println("Start Reelist API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "reelist-api")
	if err != nil {
		log.Fatalf("FATAL: cannot init tracing: %v", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Redis: %v", err)
	}
	defer redisClient.Close()

	kafkaClient, err := event.NewKafkaProducerClient(cfg)
	if err != nil {
		log.Fatalf("FATAL: cannot init Kafka: %v", err)
	}
	defer kafkaClient.Close()

	local, err := localstore.New(cfg.Local.DataDir, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot open local data dir: %v", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	collectionRepo := persistence.NewPostgresCollectionRepo(dbPool, appLogger)
	reviewRepo := persistence.NewPostgresReviewRepo(dbPool, appLogger)
	statsRepo := persistence.NewPostgresStatsRepo(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	catalogClient := catalog.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.APIKey,
		cfg.Catalog.Language,
		appLogger,
		catalog.WithCache(redisClient),
	)

	// Session-scoped stores
	provider := session.NewProvider()
	collectionStore := collectionstore.New(catalogClient, collectionRepo, local, kafkaClient, appLogger)
	reviewStore := reviewstore.New(reviewRepo, local, kafkaClient, appLogger)
	collectionStore.Bind(provider)
	reviewStore.Bind(provider)
	defer collectionStore.Flush()

	// Use Cases
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	registerUseCase := authUC.NewRegisterUseCase(userRepo, jwtSvc, appLogger)
	profileUseCase := authUC.NewProfileUseCase(userRepo, appLogger)
	resolveUseCase := shareUC.NewResolveUseCase(collectionRepo, userRepo, catalogClient, appLogger)
	deriveViewUseCase := viewsUC.NewDeriveViewUseCase(collectionStore, reviewStore)
	platformStatsUseCase := adminUC.NewPlatformStatsUseCase(statsRepo, appLogger)

	// HTTP Handlers
	authHandler := httpAdapter.NewAuthHandler(loginUseCase, registerUseCase, profileUseCase)
	sessionHandler := httpAdapter.NewSessionHandler(provider, local)
	catalogHandler := httpAdapter.NewCatalogHandler(catalogClient)
	collectionHandler := httpAdapter.NewCollectionHandler(collectionStore)
	reviewHandler := httpAdapter.NewReviewHandler(reviewStore)
	viewHandler := httpAdapter.NewViewHandler(deriveViewUseCase)
	shareHandler := httpAdapter.NewShareHandler(resolveUseCase)
	adminHandler := httpAdapter.NewAdminHandler(platformStatsUseCase)
	prefsHandler := httpAdapter.NewPrefsHandler(local)

	// Middleware
	authMiddleware := httpAdapter.AuthMiddleware(jwtSvc)
	optionalAuth := httpAdapter.OptionalAuth(jwtSvc)
	blockGuard := httpAdapter.BlockGuard(userRepo, provider, appLogger)
	sessionMiddleware := httpAdapter.SessionMiddleware(provider)
	adminGuard := httpAdapter.AdminGuard(provider)

	// Setup Gin router
	router := gin.Default()
	router.Use(httpAdapter.ErrorMiddleware(appLogger))

	api := router.Group("/api")
	{
		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			public.POST("/auth/login", authHandler.Login)
			public.POST("/auth/register", authHandler.Register)
			public.GET("/shared", shareHandler.Resolve)

			catalogGroup := public.Group("/catalog/:kind")
			{
				catalogGroup.GET("/search", catalogHandler.Search)
				catalogGroup.GET("/discover", catalogHandler.Discover)
				catalogGroup.GET("/genres", catalogHandler.Genres)
				catalogGroup.GET("/:id", catalogHandler.Detail)
			}
		}

		sessions := api.Group("/session")
		{
			sessions.GET("", sessionHandler.Current)
			sessions.POST("/guest", sessionHandler.EnterGuest)
			sessions.POST("/admin", sessionHandler.EnterAdmin)
		}

		account := api.Group("/auth")
		account.Use(authMiddleware, blockGuard)
		{
			account.GET("/me", authHandler.Me)
		}

		// The store endpoints serve guests and admins from local storage as
		// well, so authentication is optional here; when a token is present
		// it scopes the stores to that account. Single-install model: a
		// tokenless request rides whatever identity the session provider
		// currently holds, until POST /session/guest resets it.
		private := api.Group("/")
		private.Use(optionalAuth, blockGuard, sessionMiddleware)
		{
			collections := private.Group("/collections")
			{
				collections.GET("", collectionHandler.List)
				collections.POST("", collectionHandler.Create)
				collections.GET("/status", collectionHandler.Status)
				collections.POST("/retry", collectionHandler.RetryHydration)
				collections.PUT("/active/:id", collectionHandler.SetActive)
				collections.DELETE("/:id", collectionHandler.Delete)
				collections.PUT("/:id/settings", collectionHandler.UpdateSettings)
				collections.POST("/:id/share-token", collectionHandler.RegenerateToken)
				collections.POST("/toggle", collectionHandler.ToggleItem)
				collections.PUT("/favorites", collectionHandler.UpdateFavoriteSlot)
				collections.POST("/refresh-details", collectionHandler.RefreshStaleDetail)
			}

			reviews := private.Group("/reviews")
			{
				reviews.GET("", reviewHandler.List)
				reviews.GET("/:itemId", reviewHandler.Get)
				reviews.PUT("/:itemId", reviewHandler.Save)
				reviews.DELETE("/:itemId", reviewHandler.Delete)
			}

			private.GET("/view", viewHandler.Derive)

			prefs := private.Group("/prefs")
			{
				prefs.GET("/theme", prefsHandler.GetTheme)
				prefs.PUT("/theme", prefsHandler.SaveTheme)
			}
		}

		admin := api.Group("/admin")
		admin.Use(adminGuard)
		{
			admin.GET("/stats", adminHandler.PlatformStats)
		}
	}

	appLogger.Info("Server running", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Cannot run server: %v", err)
	}
}
