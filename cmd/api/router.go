package api

import (
	"net/http"

	"autoreply-backend/internal/auth/delivery"
	authUsecase "autoreply-backend/internal/auth/usecase"
	autoreplyDelivery "autoreply-backend/internal/autoreply/delivery"
	ruleDelivery "autoreply-backend/internal/rule/delivery"
	ruleUsecasePkg "autoreply-backend/internal/rule/usecase"
	"autoreply-backend/pkg/ai"
	"autoreply-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, ruleUc ruleUsecasePkg.RuleUsecase, cronHandler *autoreplyDelivery.CronHandler, generator ai.ReplyGenerator, cfg *config.Config) {
	authHandler := delivery.NewAuthHandler(authUc)
	ruleHandler := ruleDelivery.NewRuleHandler(ruleUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Job trigger, invoked by the external scheduler. Guarded by the
		// cron secret rather than a user session.
		api.GET("/cron/process", cronHandler.Process)

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Rule routes (protected)
		rules := api.Group("/rules")
		rules.Use(delivery.AuthMiddleware(authUc))
		{
			rules.GET("", ruleHandler.GetRules)
			rules.POST("", ruleHandler.CreateRule)
			rules.GET("/:id", ruleHandler.GetRuleByID)
			rules.PUT("/:id", ruleHandler.UpdateRule)
			rules.DELETE("/:id", ruleHandler.DeleteRule)
			rules.PATCH("/:id/toggle", ruleHandler.ToggleRule)
		}

		// Dashboard data (protected)
		api.GET("/logs", delivery.AuthMiddleware(authUc), ruleHandler.GetLogs)
		api.GET("/stats", delivery.AuthMiddleware(authUc), ruleHandler.GetStats)

		// Template generation (protected)
		api.POST("/generate-email", delivery.AuthMiddleware(authUc), GenerateEmailHandler(generator))
	}
}
