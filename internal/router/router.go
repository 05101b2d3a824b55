// Package router assembles the echo server: global middleware, the error
// envelope and every route group.
package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/handler"
	"github.com/iliyamo/skycomfort-server/internal/middleware"
	"github.com/iliyamo/skycomfort-server/internal/paybridge"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// Deps is everything the HTTP layer needs. Redis may be nil, in which case
// responses are not cached and rate limiting is per process.
type Deps struct {
	Env       string
	Store     handler.Pinger
	Auth      *service.AuthService
	Users     *service.UserService
	Catalog   *service.CatalogService
	Orders    *service.OrderService
	Payments  *service.PaymentService
	Sync      *service.SyncService
	Bridge    *paybridge.Channel
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       *zap.Logger
}

// New builds a ready-to-serve echo instance.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(d.Env, d.Log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))

	authn := middleware.JWTAuth(d.Auth)

	RegisterRoutes(e, handler.NewHealthHandler(d.Env, d.Store))
	RegisterAuth(e, handler.NewAuthHandler(d.Auth), authn, middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	RegisterCatalog(e, handler.NewCatalogHandler(d.Catalog), authn,
		middleware.NewRedisCache(d.Cache, d.Redis, d.Log),
		middleware.PurgeOnWrite(d.Cache, d.Redis, d.Log))
	RegisterOrders(e, handler.NewOrderHandler(d.Orders), authn)
	RegisterPayments(e, handler.NewPaymentHandler(d.Payments, d.Orders), authn)
	RegisterSync(e, handler.NewSyncHandler(d.Sync), authn)
	RegisterUsers(e, handler.NewUserHandler(d.Users), authn)
	RegisterBridge(e, handler.NewBridgeHandler(d.Bridge), authn)
	return e
}

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/health", h.Health)
}

// RegisterAuth mounts /api/auth behind the rate limiter. Only logout-all
// needs an access token; logout takes the refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn, limit echo.MiddlewareFunc) {
	g := e.Group("/api/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/validate", a.Validate)
	g.POST("/logout", a.Logout)
	g.POST("/logout-all", a.LogoutAll, authn)
}

// ErrorHandler renders every error that reaches echo in the error
// envelope. Unknown routes read "Cannot METHOD /path". Unexpected errors
// expose their text only in development.
func ErrorHandler(env string, log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		req := c.Request()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprint(he.Message)
			switch he.Code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				msg = fmt.Sprintf("Cannot %s %s", req.Method, req.URL.Path)
			}
			if he.Code >= http.StatusInternalServerError {
				log.Error("request failed", zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
			}
			if werr := utils.JSONError(c, he.Code, msg); werr != nil {
				log.Warn("write error response", zap.Error(werr))
			}
			return
		}

		log.Error("unhandled error",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(err))
		body := utils.ErrorBody{Status: utils.StatusError, Message: "Something went wrong"}
		if env == "development" {
			body.Message = err.Error()
			body.Error = fmt.Sprintf("%T", err)
		}
		if werr := c.JSON(http.StatusInternalServerError, body); werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
