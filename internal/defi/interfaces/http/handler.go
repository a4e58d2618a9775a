// Package http 提供 DeFi 操作记录的 HTTP 接口
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/tokenfolio/internal/defi/application"
	"github.com/wyfcoding/tokenfolio/internal/defi/domain"
)

// DefiHandler DeFi 操作 HTTP 处理器
type DefiHandler struct {
	service *application.DefiService
}

// NewDefiHandler 创建 DeFi 处理器
func NewDefiHandler(service *application.DefiService) *DefiHandler {
	return &DefiHandler{service: service}
}

// RegisterRoutes 注册 DeFi 路由
func (h *DefiHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/defi")
	{
		g.POST("", h.Record)
		g.GET("", h.List)
		g.GET("/summary", h.Summary)
		g.PUT("/:id/exit", h.MarkExited)
		g.DELETE("/:id", h.Delete)
	}
}

type recordRequest struct {
	Project       string           `json:"project" binding:"required"`
	ProjectURL    string           `json:"project_url"`
	OperationType string           `json:"operation_type" binding:"required,oneof=stake unstake lend borrow farm exit"`
	Token         string           `json:"token" binding:"required"`
	Quantity      decimal.Decimal  `json:"quantity" binding:"required"`
	APY           *decimal.Decimal `json:"apy"`
	Notes         string           `json:"notes"`
}

// Record 登记一笔 DeFi 操作
func (h *DefiHandler) Record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	op := &domain.DefiOperation{
		Project:       req.Project,
		ProjectURL:    req.ProjectURL,
		OperationType: domain.OperationType(req.OperationType),
		Token:         req.Token,
		Quantity:      req.Quantity,
		APY:           req.APY,
		Notes:         req.Notes,
	}
	if err := h.service.Record(c.Request.Context(), op); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": op})
}

// List 列出操作记录，支持 ?project= 过滤
func (h *DefiHandler) List(c *gin.Context) {
	ops, err := h.service.List(c.Request.Context(), c.Query("project"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ops, "count": len(ops)})
}

// Summary 按项目汇总在场数量
func (h *DefiHandler) Summary(c *gin.Context) {
	rows, err := h.service.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows, "count": len(rows)})
}

// MarkExited 标记某笔操作已退出
func (h *DefiHandler) MarkExited(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	op, err := h.service.MarkExited(c.Request.Context(), uint(id), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if op == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "operation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": op})
}

// Delete 删除一笔操作记录
func (h *DefiHandler) Delete(c *gin.Context) {
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
