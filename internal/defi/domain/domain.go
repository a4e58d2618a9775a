// Package domain 包含 DeFi 操作记录的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType DeFi 操作类型
type OperationType string

const (
	OperationTypeStake   OperationType = "stake"
	OperationTypeUnstake OperationType = "unstake"
	OperationTypeLend    OperationType = "lend"
	OperationTypeBorrow  OperationType = "borrow"
	OperationTypeFarm    OperationType = "farm"
	OperationTypeExit    OperationType = "exit"
)

// DefiOperation DeFi 操作记录实体
type DefiOperation struct {
	ID            uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Project       string           `gorm:"column:project;type:varchar(100);index;not null" json:"project"`
	ProjectURL    string           `gorm:"column:project_url;type:varchar(255)" json:"project_url"`
	OperationType OperationType    `gorm:"column:operation_type;type:varchar(20);not null" json:"operation_type"`
	Token         string           `gorm:"column:token;type:varchar(32);index;not null" json:"token"`
	Quantity      decimal.Decimal  `gorm:"column:quantity;type:decimal(32,18);not null" json:"quantity"`
	APY           *decimal.Decimal `gorm:"column:apy;type:decimal(10,4)" json:"apy"`
	ExitTime      *time.Time       `gorm:"column:exit_time" json:"exit_time"`
	Notes         string           `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName DeFi 操作表名
func (DefiOperation) TableName() string { return "defi_operations" }

// ProjectSummary 按项目聚合的投入汇总
type ProjectSummary struct {
	Project       string          `json:"project"`
	Token         string          `json:"token"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	Operations    int64           `json:"operations"`
}

// DefiRepository DeFi 操作仓储接口
type DefiRepository interface {
	Create(ctx context.Context, op *DefiOperation) error
	Update(ctx context.Context, op *DefiOperation) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*DefiOperation, error)
	List(ctx context.Context) ([]*DefiOperation, error)
	ListByProject(ctx context.Context, project string) ([]*DefiOperation, error)
	SummaryByProject(ctx context.Context) ([]*ProjectSummary, error)
	// DistinctTokens 表内出现过的全部 Token，供行情发现流程扫描
	DistinctTokens(ctx context.Context) ([]string, error)
}
