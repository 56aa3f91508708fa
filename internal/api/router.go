package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/multiplayerbase/matchmaking-backend/internal/api/handlers"
	"github.com/multiplayerbase/matchmaking-backend/internal/api/middleware"
	"github.com/multiplayerbase/matchmaking-backend/internal/config"
	"github.com/multiplayerbase/matchmaking-backend/internal/coordinator"
	"github.com/multiplayerbase/matchmaking-backend/internal/gameserver"
	"github.com/multiplayerbase/matchmaking-backend/internal/matchmaking"
	"github.com/multiplayerbase/matchmaking-backend/pkg/logger"
	jwtutil "github.com/multiplayerbase/matchmaking-backend/pkg/jwt"
	"github.com/multiplayerbase/matchmaking-backend/pkg/ratelimit"
)

// SetupRouter wires the matchmaking core and returns the HTTP engine plus
// the started coordinator, which the caller stops on shutdown.
func SetupRouter(cfg *config.Config) (*gin.Engine, *coordinator.Coordinator) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	jwtManager := jwtutil.NewManager(cfg.IdentitySecret, time.Hour)

	store := matchmaking.NewStore(cfg.QueueModes)
	policy := matchmaking.Policy{
		MinSize:     cfg.MinSize,
		DesiredSize: cfg.DesiredSize,
		MaxWait:     cfg.MaxWait,
	}

	servers := gameserver.NewClient(
		cfg.GameServerManagerURL,
		cfg.GameServerManagerServiceKey,
		cfg.GameServerExternalHost,
		cfg.SpawnTimeout,
	)

	coord := coordinator.New(store, policy, servers, cfg.SpawnTimeout)
	coord.Start()

	// Queue mutations are cheap but user-triggered; keep one bucket per
	// user, shared across instances when Redis is configured.
	queueLimit := middleware.RateLimit(10, 2, middleware.UserKey)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", "error", err)
		}
		limiter := ratelimit.NewRedisLimiter(redis.NewClient(opts))
		queueLimit = middleware.RedisRateLimit(limiter, 60, time.Minute, middleware.UserKey)
		logger.Info("Using Redis-backed rate limiting")
	}

	queueHandler := handlers.NewQueueHandler(store, coord)
	listenHandler := handlers.NewListenHandler(coord, jwtManager)

	router.GET("/", handlers.Hello)
	router.GET("/health", handlers.HealthCheck)

	queue := router.Group("/queue", middleware.Auth(jwtManager), queueLimit)
	{
		queue.POST("/:mode/join/", queueHandler.Join)
		queue.POST("/:mode/leave/", queueHandler.Leave)
	}

	router.GET("/listen/", listenHandler.Listen)

	return router, coord
}
