package api

import (
	"context"
	"net/http"
	"time"

	"pazaryeri/internal/assistant"
	"pazaryeri/internal/auth"
	"pazaryeri/internal/models"
	"pazaryeri/internal/refresher"
	"pazaryeri/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIWindow is the rate limit window for the AI assistant.
const AIWindow = 24 * time.Hour

type ListingReader interface {
	GetFiltered(ctx context.Context, f repository.ListingFilter) ([]models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
}

type SnapshotReader interface {
	FindByKey(ctx context.Context, key string) (*models.MarketPriceSnapshot, error)
}

type Accounts interface {
	auth.Verifier
	Register(ctx context.Context, in auth.RegisterInput) (*auth.UserView, *auth.Session, error)
	Login(ctx context.Context, phone, pin string) (*auth.UserView, *auth.Session, error)
	Logout(ctx context.Context, userID string) error
}

type Assistant interface {
	Handle(ctx context.Context, req assistant.Request) (*assistant.Response, error)
}

type RateLimiter interface {
	Hit(ctx context.Context, userID string, limit int, window time.Duration, now time.Time) error
}

type Sweeper interface {
	Run(ctx context.Context) (refresher.Report, error)
	RunWithProgress(ctx context.Context, progress func(done, total int, key string, err error)) (refresher.Report, error)
}

type Deps struct {
	Listings  ListingReader
	Snapshots SnapshotReader
	Accounts  Accounts
	Assistant Assistant
	Limiter   RateLimiter
	Sweeper   Sweeper

	StoragePublicURL string
	AIDailyLimit     int
	CronSecret       string

	Logger *zap.Logger
	Now    func() time.Time
}

type APIHandler struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time
}

func SetupRoutes(r *gin.RouterGroup, deps Deps) *APIHandler {
	handler := &APIHandler{
		deps:   deps,
		logger: deps.Logger,
		now:    deps.Now,
	}
	if handler.logger == nil {
		handler.logger = zap.NewNop()
	}
	if handler.now == nil {
		handler.now = time.Now
	}

	listings := r.Group("/listings")
	{
		listings.GET("", handler.GetListings)
		listings.GET("/:id", handler.GetListing)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/verify", handler.Verify)
		authGroup.POST("/logout", auth.RequireAuth(deps.Accounts), handler.Logout)
		authGroup.GET("/me", auth.RequireAuth(deps.Accounts), handler.GetCurrentUser)
	}

	r.POST("/ai-assistant", auth.OptionalAuth(deps.Accounts), handler.AIAssistant)

	market := r.Group("/market")
	{
		market.POST("/refresh", handler.RefreshMarket)
		market.GET("/refresh/stream", handler.StreamRefresh)
		market.GET("/snapshots/:key", handler.GetSnapshot)
	}

	return handler
}

// CORS allows browser clients from any origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Cron-Secret")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// fail writes the error envelope for err and logs it with the given fields.
func (h *APIHandler) fail(c *gin.Context, err error, fields ...zap.Field) {
	status, msg := statusFor(err)
	fields = append(fields, zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"success": false, "error": msg})
}
