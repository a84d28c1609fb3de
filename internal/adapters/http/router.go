package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/habeshagames/bingohub/internal/adapters/signal"
	"github.com/habeshagames/bingohub/internal/app"
	"github.com/habeshagames/bingohub/internal/config"
	"github.com/habeshagames/bingohub/internal/domain"
)

// ClientTokenMiddleware pins a stable session id to each browser; the
// websocket layer uses it as the endpoint's session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func adminKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Admin-Key")
		if got == "" {
			got = c.Query("key")
		}
		if key == "" || got != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("BingohubSession", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	ctrl := signal.NewSessionController(orch, cfg)

	r.GET("/ws/play", func(c *gin.Context) {
		ctrl.HandlePlay(ctx, c)
	})
	r.GET("/ws/admin", adminKeyMiddleware(cfg.AdminKey), func(c *gin.Context) {
		ctrl.HandleAdmin(ctx, c)
	})

	// Read-only projections of store state.
	api := r.Group("/api", adminKeyMiddleware(cfg.AdminKey))

	api.GET("/stats", func(c *gin.Context) {
		stats := orch.Rooms.Stats()
		c.JSON(http.StatusOK, gin.H{
			"players":      stats.Players,
			"rooms":        stats.Rooms,
			"active_games": stats.ActiveGames,
			"connections":  orch.Registry.Count(),
		})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	})

	api.GET("/rooms/:id", func(c *gin.Context) {
		snap, err := orch.Rooms.Get(domain.RoomID(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
