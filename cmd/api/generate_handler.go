package api

import (
	"net/http"

	"autoreply-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

type generateEmailRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// GenerateEmailHandler drafts an HTML reply template from a prompt. Best
// effort: provider failures degrade to a canned template, so a valid
// request always gets a usable 200 response.
func GenerateEmailHandler(generator ai.ReplyGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
			return
		}

		html, err := generator.GenerateReplyTemplate(c.Request.Context(), req.Prompt)
		if err != nil {
			// Only reachable with a bare provider and no fallback wired.
			c.JSON(http.StatusOK, gin.H{"html": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"html": html})
	}
}
