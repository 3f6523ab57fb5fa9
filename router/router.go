package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/smartcanteen/canteen-app/config"
	"github.com/smartcanteen/canteen-app/controllers"
	"github.com/smartcanteen/canteen-app/middlewares"
	"github.com/smartcanteen/canteen-app/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, events services.OrderEventPublisher, cache *services.MenuCache, limiter *middlewares.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// gin snapshots each route's handler chain at registration time, so
	// global middleware must be attached before any route below.
	r.Use(limiter.RateLimit())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.PrometheusMiddleware())

	menuCtrl := controllers.NewMenuController(db, cache)
	orderCtrl := controllers.NewOrderController(db, events)
	staffCtrl := controllers.NewStaffController(db, events)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Students browse the catalog and place orders without an account.
	r.GET("/menu", menuCtrl.GetAvailableMenu)
	r.GET("/menu/:item_id", menuCtrl.GetMenuItemByID)

	orders := r.Group("/orders")
	orders.Use(middlewares.NewOrderRateLimiter())
	{
		orders.POST("", orderCtrl.CreateOrder)
	}
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.GET("/students/:student_id/orders", orderCtrl.GetStudentOrders)
	r.GET("/track/:token", orderCtrl.TrackOrder)

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/staff")
	staff.Use(middlewares.StaffKeyRequired(cfg.StaffAPIKey))
	{
		staff.GET("/menu", menuCtrl.GetAllMenuItems)
		staff.POST("/menu", menuCtrl.CreateMenuItem)
		staff.PATCH("/menu/:item_id", menuCtrl.UpdateMenuItem)
		staff.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)

		staff.GET("/orders", staffCtrl.GetAllOrders)
		staff.PATCH("/orders/:order_id/status", staffCtrl.UpdateOrderStatus)
		staff.GET("/dashboard/stats", staffCtrl.GetDashboardStats)
	}

	return r
}
