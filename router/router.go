package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/storefront-notify/config"
	"github.com/yeremiapane/storefront-notify/controllers"
	"github.com/yeremiapane/storefront-notify/middlewares"
)

func SetupRouter(cfg *config.Config, customerCtrl *controllers.CustomerController, notificationCtrl *controllers.NotificationController) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "server is running")
	})

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	api := r.Group("/api")
	api.Use(rateLimiter.RateLimit())
	{
		api.GET("/check-customer", customerCtrl.CheckCustomer)

		notifications := api.Group("/notifications")
		{
			notifications.POST("/send", notificationCtrl.SendNotification)
			notifications.GET("", notificationCtrl.GetAllNotifications)
			notifications.GET("/unread", notificationCtrl.GetUnreadCount)
			notifications.PUT("/read", notificationCtrl.MarkAllRead)
			notifications.POST("/read", notificationCtrl.MarkAllRead)
			notifications.DELETE("/clear", notificationCtrl.ClearNotifications)
			notifications.DELETE("/:id", notificationCtrl.DeleteNotification)

			// Customer metafield variant
			notifications.GET("/get/:customerId", notificationCtrl.GetCustomerNotifications)
			notifications.POST("/clear", notificationCtrl.ClearCustomerNotifications)
		}
	}

	return r
}
