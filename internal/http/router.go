package http

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/surpriselly/authsvc/internal/auth"
	"github.com/surpriselly/authsvc/internal/config"
	"github.com/surpriselly/authsvc/internal/http/handlers"
	"github.com/surpriselly/authsvc/internal/http/middlewares"
	"github.com/surpriselly/authsvc/internal/observability"
	"github.com/surpriselly/authsvc/internal/queue"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for auth payloads

// Deps carries everything the router wires into handlers. Stores are
// interfaces so tests can swap in the memory repo.
type Deps struct {
	Users    handlers.UserStore
	OTP      handlers.OTPManager
	JWT      *auth.Manager
	Enqueuer queue.Enqueuer
	Cfg      config.Config
	Prom     *observability.Prom
	Ping     func() error
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	cfgEnv := os.Getenv("APP_ENV")

	if cfgEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Cfg.OTELEndpoint != "" {
		r.Use(otelgin.Middleware("authsvc"))
	}

	// health

	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// auth flows

	authHandler := handlers.NewAuthHandler(deps.Users, deps.OTP, deps.JWT, deps.Enqueuer, deps.Cfg, log)
	authMw := middlewares.NewAuthMiddleware(deps.JWT)

	r.POST("/signup", authHandler.SignUp)
	r.POST("/login", authHandler.Login)
	r.POST("/forgot-password-otp", authHandler.ForgotPassword)
	r.POST("/verify-otp", authHandler.VerifyOTP)
	r.POST("/reset-password", authHandler.ResetPassword)

	r.GET("/me", authMw.RequireSession(), authHandler.Me)

	return r
}
