package http

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/geocoder89/alumniportal/internal/http/handlers"
	"github.com/geocoder89/alumniportal/internal/http/middlewares"
	"github.com/geocoder89/alumniportal/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Log *slog.Logger
	Env string

	Signup handlers.SignupService
	Login  handlers.LoginResolver

	Canonical handlers.Pinger
	Mirror    handlers.Pinger // optional

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer // backs /metrics when set

	ServiceName    string
	AllowedOrigins []string
	StaticDir      string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" && d.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.CORSMiddleware(d.AllowedOrigins))
	r.Use(middlewares.SecurityHeaders())

	health := handlers.NewHealthHandler(d.Canonical, d.Mirror)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	signupHandler := handlers.NewSignupHandler(d.Signup, d.Log)
	loginHandler := handlers.NewLoginHandler(d.Login, d.Log)

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes), middlewares.RequireJSON())
	{
		api.GET("/health", health.Health)
		api.POST("/signup/student", signupHandler.Student)
		api.POST("/signup/alumni", signupHandler.Alumni)
		api.POST("/login", loginHandler.Login)
	}

	if d.StaticDir != "" {
		mountStatic(r, d.StaticDir)
	}

	return r
}

// mountStatic serves the browser UI for any GET that no route claimed.
func mountStatic(r *gin.Engine, dir string) {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	r.NoRoute(func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
			handlers.RespondError(ctx, http.StatusNotFound, "Not found", nil)
			return
		}

		if ctx.Request.URL.Path == "/" {
			if _, err := os.Stat(index); err == nil {
				ctx.File(index)
				return
			}
		}

		files.ServeHTTP(ctx.Writer, ctx.Request)
	})
}
