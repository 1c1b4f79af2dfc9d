package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/GautamAgrawal1/lets-connect/internal/auth"
	"github.com/GautamAgrawal1/lets-connect/internal/config"
	"github.com/GautamAgrawal1/lets-connect/internal/core"
	"github.com/GautamAgrawal1/lets-connect/internal/history"
	"github.com/GautamAgrawal1/lets-connect/internal/metrics"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Hub     *core.Hub
	Auth    *auth.Service
	History *history.Service
	// Metrics is optional; /metrics is only mounted when it is set.
	Metrics *metrics.Relay
	Config  *config.Config
	Logger  *zerolog.Logger
}

// NewServer builds the HTTP server.
func NewServer(d Deps) *http.Server {
	return &http.Server{
		Addr:              d.Config.Addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: d.Config.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine with every route, wrapped in CORS.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		nop := zerolog.Nop()
		d.Logger = &nop
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(d.Logger))

	router.GET("/health", healthHandler)

	var frames FrameMetrics
	if d.Metrics != nil {
		frames = d.Metrics
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	ws := NewWSHandler(d.Hub, WSConfig{
		MaxMessageBytes:    d.Config.MaxMessageBytes,
		PingInterval:       d.Config.PingInterval,
		PongTimeout:        d.Config.PongTimeout,
		RateLimitPerMinute: d.Config.RateLimitPerMinute,
		AllowedOrigins:     d.Config.CORSOrigins,
	}, d.Logger, frames)
	router.GET("/ws", gin.WrapH(ws))

	rooms := NewRoomHandlers(d.Hub, d.Logger)
	router.GET("/api/v1/rooms/:room", rooms.GetRoom)
	router.GET("/api/v1/stats", rooms.Stats)

	if d.Auth != nil && d.History != nil {
		api := NewAPIHandlers(d.Auth, d.History, d.Logger)
		users := router.Group("/api/v1/users")
		users.POST("/register", api.Register)
		users.POST("/login", api.Login)
		users.POST("/add_to_activity", api.AddToActivity)
		users.GET("/get_all_activity", api.GetAllActivity)
	}

	return cors.New(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}).Handler(router)
}

func healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
