// Package router wires handlers, middleware and route groups onto the
// Echo instance. Routes live under /v1; the split between groups
// follows who may call them: public browse, any authenticated user,
// managers, admins.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/stayora/hotel-booking-backend/internal/config"
	"github.com/stayora/hotel-booking-backend/internal/handler"
	"github.com/stayora/hotel-booking-backend/internal/middleware"
	"github.com/stayora/hotel-booking-backend/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	PublicHotels  *handler.PublicHotelHandler
	OwnerHotels   *handler.OwnerHotelHandler
	AdminHotels   *handler.AdminHotelHandler
	AdminUsers    *handler.AdminUserHandler
	Bookings      *handler.BookingHandler
	Reviews       *handler.ReviewHandler
	Notifications *handler.NotificationHandler
}

// Register mounts all routes. rdb may be nil, in which case rate
// limiting and response caching are skipped.
func Register(e *echo.Echo, db *sql.DB, rdb *redis.Client, reg *prometheus.Registry, jwtSecret string, h Handlers) {
	e.Use(middleware.Metrics())
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Unauthenticated auth endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Public browse endpoints, cacheable.
	public := e.Group("/v1")
	if rdb != nil {
		public.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	public.GET("/hotels", h.PublicHotels.List)
	public.GET("/hotels/:id", h.PublicHotels.Get)
	public.GET("/hotels/:id/reviews", h.PublicHotels.ListReviews)

	// Any authenticated user.
	user := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	user.POST("/auth/logout", h.Auth.Logout)
	user.GET("/me", h.Auth.Me)
	user.GET("/notifications", h.Notifications.List)

	// Booking access control beyond the role check happens in the
	// ownership gate, so reads and transitions accept every role.
	user.GET("/bookings/:id", h.Bookings.Get)
	user.PATCH("/bookings/:id/status", h.Bookings.Transition)
	user.POST("/reviews/:id/reply", h.Reviews.Reply)

	customer := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleCustomer))
	customer.POST("/bookings", h.Bookings.Create)
	customer.GET("/bookings", h.Bookings.Mine)
	customer.POST("/bookings/:id/review", h.Reviews.Create)

	manager := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleManager, model.RoleAdmin))
	manager.POST("/hotels", h.OwnerHotels.Register)
	manager.PATCH("/hotels/:id", h.OwnerHotels.Update)
	manager.DELETE("/hotels/:id", h.OwnerHotels.Delete)
	manager.GET("/manager/hotels", h.OwnerHotels.Mine)
	manager.GET("/manager/hotels/:id/bookings", h.Bookings.ByHotel)

	admin := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin))
	admin.GET("/hotels/pending", h.AdminHotels.ListPending)
	admin.PATCH("/hotels/:id/status", h.AdminHotels.Decide)
	admin.GET("/users/pending", h.AdminUsers.PendingManagers)
	admin.PATCH("/users/:id/approve", h.AdminUsers.Approve)
	admin.PATCH("/users/:id/block", h.AdminUsers.Block)
	admin.DELETE("/users/:id", h.AdminUsers.Delete)
	admin.PATCH("/users/:id/role", h.AdminUsers.SetRole)
}
