// Package domain 包含仓位记录的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType 仓位操作类型
type OperationType string

const (
	OperationTypeBuy  OperationType = "buy"
	OperationTypeSell OperationType = "sell"
)

// PositionOperation 仓位操作记录实体
type PositionOperation struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OperationType OperationType   `gorm:"column:operation_type;type:varchar(10);not null" json:"operation_type"`
	TokenSymbol   string          `gorm:"column:token_symbol;type:varchar(32);index;not null" json:"token_symbol"`
	TokenName     string          `gorm:"column:token_name;type:varchar(100)" json:"token_name"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(32,18);not null" json:"price"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(32,18);not null" json:"total_amount"`
	Reason        string          `gorm:"column:reason;type:text" json:"reason"`
	OperationDate time.Time       `gorm:"column:operation_date;autoCreateTime" json:"operation_date"`
	Score         *int            `gorm:"column:score" json:"score"`
	Review        string          `gorm:"column:review;type:text" json:"review"`
	ReviewDate    *time.Time      `gorm:"column:review_date" json:"review_date"`
}

// TableName 仓位操作表名
func (PositionOperation) TableName() string { return "position_operations" }

// TokenSummary 按 Token 聚合的买卖汇总
type TokenSummary struct {
	TokenSymbol     string          `json:"token_symbol"`
	TokenName       string          `json:"token_name"`
	TotalBuyQty     decimal.Decimal `json:"total_buy_quantity"`
	TotalSellQty    decimal.Decimal `json:"total_sell_quantity"`
	TotalBuyAmount  decimal.Decimal `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal `json:"total_sell_amount"`
}

// PositionRepository 仓位操作仓储接口
type PositionRepository interface {
	Create(ctx context.Context, op *PositionOperation) error
	Update(ctx context.Context, op *PositionOperation) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*PositionOperation, error)
	List(ctx context.Context) ([]*PositionOperation, error)
	ListByToken(ctx context.Context, tokenSymbol string) ([]*PositionOperation, error)
	SummaryByToken(ctx context.Context) ([]*TokenSummary, error)
	// DistinctTokens 表内出现过的全部 Token，供行情发现流程扫描
	DistinctTokens(ctx context.Context) ([]string, error)
}
