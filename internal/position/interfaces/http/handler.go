// Package http 提供仓位记录的 HTTP 接口
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/tokenfolio/internal/position/application"
	"github.com/wyfcoding/tokenfolio/internal/position/domain"
)

// PositionHandler 仓位记录 HTTP 处理器
type PositionHandler struct {
	service *application.PositionService
}

// NewPositionHandler 创建仓位处理器
func NewPositionHandler(service *application.PositionService) *PositionHandler {
	return &PositionHandler{service: service}
}

// RegisterRoutes 注册仓位路由
func (h *PositionHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/positions")
	{
		g.POST("", h.Record)
		g.GET("", h.List)
		g.GET("/holdings", h.Holdings)
		g.PUT("/:id/review", h.UpdateReview)
		g.DELETE("/:id", h.Delete)
	}
}

type recordRequest struct {
	OperationType string          `json:"operation_type" binding:"required,oneof=buy sell"`
	TokenSymbol   string          `json:"token_symbol" binding:"required"`
	TokenName     string          `json:"token_name"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Reason        string          `json:"reason"`
}

// Record 登记一笔仓位操作
func (h *PositionHandler) Record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	op := &domain.PositionOperation{
		OperationType: domain.OperationType(req.OperationType),
		TokenSymbol:   req.TokenSymbol,
		TokenName:     req.TokenName,
		Quantity:      req.Quantity,
		Price:         req.Price,
		Reason:        req.Reason,
	}
	if err := h.service.Record(c.Request.Context(), op); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": op})
}

// List 列出操作记录，支持 ?token= 过滤
func (h *PositionHandler) List(c *gin.Context) {
	ops, err := h.service.List(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ops, "count": len(ops)})
}

// Holdings 返回净持仓与当前估值
func (h *PositionHandler) Holdings(c *gin.Context) {
	holdings, err := h.service.Holdings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": holdings, "count": len(holdings)})
}

type reviewRequest struct {
	Score  int    `json:"score" binding:"required,min=1,max=10"`
	Review string `json:"review"`
}

// UpdateReview 补充评分与复盘
func (h *PositionHandler) UpdateReview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	op, err := h.service.UpdateReview(c.Request.Context(), uint(id), req.Score, req.Review)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if op == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "operation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": op})
}

// Delete 删除一笔操作记录
func (h *PositionHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
