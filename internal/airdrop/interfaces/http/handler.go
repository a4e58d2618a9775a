// Package http 提供空投参与记录的 HTTP 接口
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/tokenfolio/internal/airdrop/application"
	"github.com/wyfcoding/tokenfolio/internal/airdrop/domain"
)

// AirdropHandler 空投参与 HTTP 处理器
type AirdropHandler struct {
	service *application.AirdropService
}

// NewAirdropHandler 创建空投处理器
func NewAirdropHandler(service *application.AirdropService) *AirdropHandler {
	return &AirdropHandler{service: service}
}

// RegisterRoutes 注册空投路由
func (h *AirdropHandler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/airdrops")
	{
		g.POST("", h.Record)
		g.GET("", h.List)
		g.PUT("/:id/settle", h.Settle)
		g.DELETE("/:id", h.Delete)
	}
}

type recordRequest struct {
	ProjectName            string           `json:"project_name" binding:"required"`
	ProjectURL             string           `json:"project_url"`
	ProjectTwitter         string           `json:"project_twitter"`
	ParticipationType      string           `json:"participation_type" binding:"required,oneof=stake testnet trade social liquidity"`
	WalletAddress          string           `json:"wallet_address"`
	ParticipationAmount    decimal.Decimal  `json:"participation_amount"`
	ParticipationAmountUSD decimal.Decimal  `json:"participation_amount_usdt"`
	ParticipationToken     string           `json:"participation_token"`
	ExpectedAirdropDate    *time.Time       `json:"expected_airdrop_date"`
	ExpectedReward         string           `json:"expected_reward"`
	Notes                  string           `json:"notes"`
}

// Record 登记一笔空投参与
func (h *AirdropHandler) Record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	p := &domain.AirdropParticipation{
		ProjectName:            req.ProjectName,
		ProjectURL:             req.ProjectURL,
		ProjectTwitter:         req.ProjectTwitter,
		ParticipationType:      domain.ParticipationType(req.ParticipationType),
		WalletAddress:          req.WalletAddress,
		ParticipationAmount:    req.ParticipationAmount,
		ParticipationAmountUSD: req.ParticipationAmountUSD,
		ParticipationToken:     req.ParticipationToken,
		ExpectedAirdropDate:    req.ExpectedAirdropDate,
		ExpectedReward:         req.ExpectedReward,
		Notes:                  req.Notes,
	}
	if err := h.service.Record(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

// List 列出参与记录，支持 ?status= 与 ?type= 过滤
func (h *AirdropHandler) List(c *gin.Context) {
	ps, err := h.service.List(c.Request.Context(), c.Query("status"), c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ps, "count": len(ps)})
}

type settleRequest struct {
	Status       string           `json:"status" binding:"required,oneof=received failed"`
	ActualReward string           `json:"actual_reward"`
	ActualAPR    *decimal.Decimal `json:"actual_apr"`
}

// Settle 更新空投结果状态
func (h *AirdropHandler) Settle(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid id"})
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	p, err := h.service.Settle(c.Request.Context(), uint(id), application.SettleResult{
		Status:       domain.Status(req.Status),
		ActualReward: req.ActualReward,
		ActualAPR:    req.ActualAPR,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "participation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// Delete 删除一笔参与记录
func (h *AirdropHandler) Delete(c *gin.Context) {
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
