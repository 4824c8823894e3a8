package ginserver

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
	ChangeRole(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Mine(c *gin.Context)
	HostBookings(c *gin.Context)
	Get(c *gin.Context)
	UpdateStatus(c *gin.Context)
	UpdatePayment(c *gin.Context)
	Delete(c *gin.Context)
}

type ReviewsHTTP interface {
	Create(angle domainreviews.Angle, param string) gin.HandlerFunc
	List(c *gin.Context)
	Get(c *gin.Context)
	Respond(c *gin.Context)
	SetVisibility(c *gin.Context)
	Delete(c *gin.Context)
}

type ListingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Mine(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	UploadImage(c *gin.Context)
	RemoveImage(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Booking        BookingHTTP
	Reviews        ReviewsHTTP
	Properties     ListingHTTP
	Experiences    ListingHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine; tests drive it through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	api.GET("/livez", health.Livez)
	api.GET("/readyz", health.Readyz)
	authed := requireAuth(obsMW.Logger)

	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", authed, h.Auth.Logout)
		api.GET("/auth/me", authed, h.Auth.Me)
		api.PUT("/users/:userId/role", authed, h.Auth.ChangeRole)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings", authed)
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.GET("/my-bookings", h.Booking.Mine)
		bookings.GET("/host-bookings", h.Booking.HostBookings)
		bookings.GET("/:id", h.Booking.Get)
		bookings.PUT("/:id/status", h.Booking.UpdateStatus)
		bookings.PUT("/:id/payment", h.Booking.UpdatePayment)
		bookings.DELETE("/:id", h.Booking.Delete)
	}
	if h.Reviews != nil {
		reviews := api.Group("/reviews")
		reviews.GET("", h.Reviews.List)
		reviews.GET("/:id", h.Reviews.Get)
		reviews.POST("/property/:targetId", authed, h.Reviews.Create(domainreviews.AngleProperty, "targetId"))
		reviews.POST("/experience/:targetId", authed, h.Reviews.Create(domainreviews.AngleExperience, "targetId"))
		reviews.POST("/host/:targetId", authed, h.Reviews.Create(domainreviews.AngleHost, "targetId"))
		reviews.POST("/guest/:guestId", authed, h.Reviews.Create(domainreviews.AngleGuest, "guestId"))
		reviews.POST("/:id/respond", authed, h.Reviews.Respond)
		reviews.PUT("/:id/visibility", authed, h.Reviews.SetVisibility)
		reviews.DELETE("/:id", authed, h.Reviews.Delete)
	}
	mountListings(api.Group("/properties"), h.Properties, authed)
	mountListings(api.Group("/experiences"), h.Experiences, authed)

	return router
}

func mountListings(group *gin.RouterGroup, h ListingHTTP, authed gin.HandlerFunc) {
	if h == nil {
		return
	}
	group.POST("", authed, h.Create)
	group.GET("/my", authed, h.Mine)
	group.GET("/:id", h.Get)
	group.PUT("/:id", authed, h.Update)
	group.DELETE("/:id", authed, h.Delete)
	group.POST("/:id/images", authed, h.UploadImage)
	group.DELETE("/:id/images/:imageIndex", authed, h.RemoveImage)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", obs.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
