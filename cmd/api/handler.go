package api

import (
	"net/http"

	authUsecase "autoreply-backend/internal/auth/usecase"
	autoreplyDelivery "autoreply-backend/internal/autoreply/delivery"
	ruleUsecasePkg "autoreply-backend/internal/rule/usecase"
	"autoreply-backend/pkg/ai"
	"autoreply-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	ruleUsecase ruleUsecasePkg.RuleUsecase
	cronHandler *autoreplyDelivery.CronHandler
	generator   ai.ReplyGenerator
	config      *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, ruleUc ruleUsecasePkg.RuleUsecase, cronHandler *autoreplyDelivery.CronHandler, generator ai.ReplyGenerator, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase: authUc,
		ruleUsecase: ruleUc,
		cronHandler: cronHandler,
		generator:   generator,
		config:      cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Cron-Secret")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.ruleUsecase, h.cronHandler, h.generator, h.config)

	return r.Run(addr)
}
