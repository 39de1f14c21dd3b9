package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/minerals/internal/access"
	"github.com/stwalsh4118/minerals/internal/logger"
	"github.com/stwalsh4118/minerals/internal/metrics"
	"github.com/stwalsh4118/minerals/internal/middleware"
	"github.com/stwalsh4118/minerals/internal/session"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Logger       *logger.Logger
	CORSOrigins  []string
	SessionTTL   time.Duration
	SecureCookie bool

	Health     *HealthHandler
	Docket     *DocketHandler
	TitleChain *TitleChainHandler
	Access     *AccessHandler
	Checker    *access.Checker

	// Metrics and Gatherer are optional. /metrics is served only when a
	// Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()

	// Middleware order: RequestID -> Session -> Logger -> Recovery -> Metrics -> CORS
	router.Use(middleware.RequestID())
	router.Use(session.Middleware(cfg.SessionTTL, cfg.SecureCookie))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Metrics(cfg.Metrics))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", cfg.Health.Health)
	router.GET("/health/ready", cfg.Health.Ready)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", cfg.Health.Info)

		docket := v1.Group("/docket")
		{
			docket.GET("", cfg.Docket.Docket)
			docket.GET("/parties", cfg.Docket.Parties)
			docket.GET("/parties/:name", cfg.Docket.Party)
			docket.POST("/reload", cfg.Docket.Reload)
		}

		titleChain := v1.Group("/title-chain", cfg.Checker.Middleware())
		{
			titleChain.GET("", cfg.TitleChain.Example)
			titleChain.POST("", cfg.TitleChain.Upload)
		}

		v1.POST("/access", cfg.Access.Enter)
		v1.DELETE("/session", cfg.Access.EndSession)
	}

	return router
}
