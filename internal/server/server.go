package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/qwerty-development/gym-webapp-sub000/internal/activity"
	"github.com/qwerty-development/gym-webapp-sub000/internal/auth"
	"github.com/qwerty-development/gym-webapp-sub000/internal/booking"
	"github.com/qwerty-development/gym-webapp-sub000/internal/bundle"
	"github.com/qwerty-development/gym-webapp-sub000/internal/cancellation"
	"github.com/qwerty-development/gym-webapp-sub000/internal/config"
	"github.com/qwerty-development/gym-webapp-sub000/internal/ledger"
	"github.com/qwerty-development/gym-webapp-sub000/internal/market"
	"github.com/qwerty-development/gym-webapp-sub000/internal/purchase"
	"github.com/qwerty-development/gym-webapp-sub000/internal/user"
	"github.com/qwerty-development/gym-webapp-sub000/internal/wallet"
)

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	User         *user.Handler
	Wallet       *wallet.Handler
	Ledger       *ledger.Handler
	Market       *market.Handler
	Activity     *activity.Handler
	Booking      *booking.Handler
	Cancellation *cancellation.Handler
	Purchase     *purchase.Handler
	Bundle       *bundle.Handler
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

func New(cfg *config.Config, issuer *auth.Issuer, database *sqlx.DB, queue Queue, h Handlers) *Server {
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	router.GET("/health", Health(database, queue))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	limited := router.Group("/")
	limited.Use(limiter.Middleware())

	public := limited.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.Refresh)
	}

	authMiddleware := auth.Middleware(issuer)
	protected := limited.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", h.User.Me)

		protected.GET("/wallet", h.Wallet.GetMine)
		protected.GET("/wallet/transactions", h.Ledger.ListMine)

		protected.GET("/activities", h.Activity.ListActivities)
		protected.GET("/activities/:activityID", h.Activity.GetActivity)
		protected.GET("/coaches", h.Activity.ListCoaches)

		protected.GET("/sessions", h.Booking.ListSessions)
		protected.GET("/sessions/mine", h.Booking.ListMine)
		protected.POST("/sessions/:sessionID/book", h.Booking.BookSession)
		protected.POST("/sessions/:sessionID/cancel", h.Cancellation.CancelIndividual)
		protected.POST("/sessions/:sessionID/items", h.Purchase.PayForItems)

		protected.GET("/group-sessions", h.Booking.ListGroupSessions)
		protected.POST("/group-sessions/:groupID/join", h.Booking.JoinGroup)
		protected.POST("/group-sessions/:groupID/cancel", h.Cancellation.CancelGroup)
		protected.POST("/group-sessions/:groupID/items", h.Purchase.PayForGroupItems)

		protected.GET("/market/items", h.Market.List)
		protected.POST("/market/checkout", h.Purchase.Checkout)

		protected.GET("/bundles", h.Bundle.List)
		protected.POST("/bundles/:bundleID/purchase", h.Bundle.Purchase)
	}

	admin := limited.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/activities", h.Activity.CreateActivity)
		admin.POST("/coaches", h.Activity.CreateCoach)

		admin.POST("/sessions", h.Booking.CreateSession)
		admin.POST("/group-sessions", h.Booking.CreateGroupSession)
		admin.POST("/group-sessions/:groupID/cancel", h.Cancellation.CancelGroupForAll)

		admin.POST("/market/items", h.Market.Create)
		admin.POST("/market/items/:itemID/restock", h.Market.Restock)

		admin.POST("/bundles", h.Bundle.Create)

		admin.GET("/users/:userID/wallet", h.Wallet.Get)
		admin.POST("/users/:userID/wallet/adjust", h.Wallet.Adjust)
		admin.PUT("/users/:userID/tokens", h.Wallet.UpdateTokens)
		admin.PUT("/users/:userID/essentials", h.Wallet.UpdateEssentials)
		admin.POST("/users/:userID/punches/remove", h.Wallet.RemovePunches)
		admin.PUT("/users/:userID/free", h.Wallet.SetFree)

		admin.GET("/transactions", h.Ledger.ListAll)
		admin.GET("/transactions/summary", h.Ledger.Summary)
	}

	return &Server{
		router:  router,
		limiter: limiter,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving on the configured port. It returns nil once Shutdown
// has been called, even if Shutdown ran first.
func (s *Server) Start() error {
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the limiter sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
