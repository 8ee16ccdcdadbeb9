package api

import (
	"log"
	stdhttp "net/http"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain"
	h "campusbus/internal/http/handlers"
	"campusbus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.ConfigureAuth(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"code":   "not_found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	authed := middleware.Auth(h.AccessTokenParser())
	admin := middleware.RequireRoles(domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes-table", h.RoutesTable)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		// Users
		users := api.Group("/users", authed)
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
		users.GET("/:id", h.GetUser)

		// Catalog
		stations := api.Group("/stations")
		stations.GET("", h.ListStations)
		stations.GET("/:id", h.GetStation)
		stations.POST("", authed, admin, h.CreateStation)
		stations.PUT("/:id", authed, admin, h.UpdateStation)
		stations.DELETE("/:id", authed, admin, h.DeleteStation)

		routes := api.Group("/routes")
		routes.GET("", h.ListRoutes)
		routes.GET("/:id", h.GetRoute)
		routes.POST("", authed, admin, h.CreateRoute)
		routes.PUT("/:id", authed, admin, h.UpdateRoute)

		buses := api.Group("/buses")
		buses.GET("", h.ListBuses)
		buses.GET("/:id", h.GetBus)
		buses.GET("/:id/track", authed, h.TrackBus)
		buses.POST("", authed, admin, h.CreateBus)
		buses.PUT("/:id", authed, admin, h.UpdateBus)

		schedules := api.Group("/schedules")
		schedules.GET("", h.ListSchedules)
		schedules.GET("/:id", h.GetSchedule)
		schedules.POST("", authed, admin, h.CreateSchedule)
		schedules.PUT("/:id", authed, admin, h.UpdateSchedule)
		schedules.DELETE("/:id", authed, admin, h.DeleteSchedule)

		trackers := api.Group("/trackers", authed, admin)
		trackers.GET("", h.ListTrackers)
		trackers.POST("", h.CreateTracker)
		trackers.PUT("/:id", h.UpdateTracker)

		// Bookings
		bookings := api.Group("/bookings", authed)
		bookings.POST("/create", h.CreateBooking)
		bookings.GET("/user", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/ticket", h.GetBookingTicket)

		adminGroup := api.Group("/admin", authed, admin)
		adminGroup.GET("/bookings", h.AdminListBookings)
		adminGroup.PUT("/bookings/:id/status", h.AdminUpdateBookingStatus)
		adminGroup.GET("/analytics", h.AdminAnalytics)

		// Tracking. Devices authenticate by device_id only.
		api.POST("/location/update", h.UpdateLocation)
		api.GET("/feeds/vehicle-positions", h.VehiclePositionsFeed)

		// Notifications
		notifications := api.Group("/notifications", authed)
		notifications.GET("", h.ListNotifications)
		notifications.GET("/unread-count", h.UnreadNotificationCount)
		notifications.PUT("/mark-all-read", h.MarkAllNotificationsRead)
		notifications.PATCH("/:id/read", h.MarkNotificationRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}

	h.SetRouter(r)
	return r
}
