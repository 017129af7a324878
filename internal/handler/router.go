package handler

import (
	"net/http"

	"bookstore-choreography/internal/handler/api"
	"bookstore-choreography/internal/handler/middleware"
	"bookstore-choreography/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Engine   *gin.Engine
	Config   config.Config
	Log      *middleware.Logger
	Gatherer prometheus.Gatherer     `optional:"true"`
	Metrics  *middleware.HTTPMetrics `optional:"true"`
	Handlers []api.RouteProvider     `group:"routes"`
}

func NewRouter(p RouterParams) {
	setupMiddleware(p)
	setupRoutes(p)
}

func setupMiddleware(p RouterParams) {
	logger := p.Log.Slog()
	// Recovery must be first (outermost) to catch panics from all other middleware
	p.Engine.Use(middleware.CustomRecovery(logger))
	p.Engine.Use(middleware.NewCORSMiddleware(p.Config.CORS, logger))
	if p.Metrics != nil {
		p.Engine.Use(p.Metrics.Middleware())
	}
	p.Engine.Use(p.Log.RequestLog())
	p.Engine.Use(middleware.ErrorHandler(logger))
}

func setupRoutes(p RouterParams) {
	p.Engine.GET("/health", healthCheck(p.Config.Server.Name))
	if p.Gatherer != nil {
		p.Engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{})))
	}

	if gin.Mode() == gin.DebugMode {
		p.Engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	root := p.Engine.Group("")
	for _, h := range p.Handlers {
		addRoutes(root, h.Routes())
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": service,
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []api.Route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
