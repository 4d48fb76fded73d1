package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"autoreply-backend/internal/rule/dto"
	"autoreply-backend/internal/rule/usecase"

	"github.com/gin-gonic/gin"
)

type RuleHandler struct {
	ruleUsecase usecase.RuleUsecase
}

func NewRuleHandler(ruleUsecase usecase.RuleUsecase) *RuleHandler {
	return &RuleHandler{
		ruleUsecase: ruleUsecase,
	}
}

func (h *RuleHandler) GetRules(c *gin.Context) {
	userID := c.GetString("userID")
	rules, err := h.ruleUsecase.GetRules(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.ruleUsecase.CreateRule(c.GetString("userEmail"), c.GetString("userName"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) GetRuleByID(c *gin.Context) {
	rule, err := h.ruleUsecase.GetRuleByID(c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req dto.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rule, err := h.ruleUsecase.UpdateRule(c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) DeleteRule(c *gin.Context) {
	if err := h.ruleUsecase.DeleteRule(c.GetString("userID"), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *RuleHandler) ToggleRule(c *gin.Context) {
	rule, err := h.ruleUsecase.ToggleRule(c.GetString("userID"), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h *RuleHandler) GetLogs(c *gin.Context) {
	limit := 50
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	logs, total, err := h.ruleUsecase.GetLogs(c.GetString("userID"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	})
}

func (h *RuleHandler) GetStats(c *gin.Context) {
	stats, err := h.ruleUsecase.GetStats(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RuleHandler) writeError(c *gin.Context, err error) {
	var validationErr *usecase.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Msg})
	case errors.Is(err, usecase.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
