package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/tokenfolio/internal/tokenprice/application"
)

// TokenPriceHandler 行情 HTTP 接口
type TokenPriceHandler struct {
	query *application.QueryService
	sync  *application.SyncService
}

// NewTokenPriceHandler 创建行情 HTTP 接口
func NewTokenPriceHandler(query *application.QueryService, sync *application.SyncService) *TokenPriceHandler {
	return &TokenPriceHandler{query: query, sync: sync}
}

// RegisterRoutes 注册路由
func (h *TokenPriceHandler) RegisterRoutes(r *gin.RouterGroup) {
	v1 := r.Group("/v1/price")
	{
		v1.GET("", h.GetAllPrices)
		v1.POST("/batch", h.GetBatchPrices)
		v1.POST("/refresh", h.Refresh)
		v1.GET("/health", h.GetHealth)
		v1.GET("/:token", h.GetPrice)
	}
}

// GetPrice 单 Token 行情
func (h *TokenPriceHandler) GetPrice(c *gin.Context) {
	if !h.serviceReady(c) {
		return
	}

	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "token is required"})
		return
	}

	dto, err := h.query.GetPrice(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if dto == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "token price not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dto})
}

type batchRequest struct {
	Tokens []string `json:"tokens"`
}

// GetBatchPrices 批量行情，单次最多 100 个 Token
func (h *TokenPriceHandler) GetBatchPrices(c *gin.Context) {
	if !h.serviceReady(c) {
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "tokens must be a non-empty list"})
		return
	}

	dtos, err := h.query.GetBatchPrices(c.Request.Context(), req.Tokens)
	if err != nil {
		if errors.Is(err, application.ErrEmptyTokens) || errors.Is(err, application.ErrTooManyTokens) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dtos, "count": len(dtos)})
}

// GetAllPrices 全量行情
func (h *TokenPriceHandler) GetAllPrices(c *gin.Context) {
	if !h.serviceReady(c) {
		return
	}

	dtos, err := h.query.GetAllPrices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dtos, "count": len(dtos)})
}

// Refresh 手动触发一次刷新周期
func (h *TokenPriceHandler) Refresh(c *gin.Context) {
	started, err := h.sync.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}

	msg := "price refresh completed"
	if !started {
		msg = "refresh skipped: previous cycle still in progress"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// GetHealth 服务健康状态
func (h *TokenPriceHandler) GetHealth(c *gin.Context) {
	dto, err := h.query.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": dto})
}

// serviceReady 同步服务未启动（如存储不可用）时行情接口统一回 503
func (h *TokenPriceHandler) serviceReady(c *gin.Context) bool {
	if h.sync != nil && h.sync.IsRunning() {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "token price service unavailable"})
	return false
}
