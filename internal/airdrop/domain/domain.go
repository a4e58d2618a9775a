// Package domain 包含空投参与记录的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status 空投参与状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusReceived Status = "received"
	StatusFailed   Status = "failed"
)

// ParticipationType 参与方式
type ParticipationType string

const (
	ParticipationTypeStake     ParticipationType = "stake"
	ParticipationTypeTestnet   ParticipationType = "testnet"
	ParticipationTypeTrade     ParticipationType = "trade"
	ParticipationTypeSocial    ParticipationType = "social"
	ParticipationTypeLiquidity ParticipationType = "liquidity"
)

// AirdropParticipation 空投参与记录实体
type AirdropParticipation struct {
	ID                     uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectName            string            `gorm:"column:project_name;type:varchar(100);index;not null" json:"project_name"`
	ProjectURL             string            `gorm:"column:project_url;type:varchar(255)" json:"project_url"`
	ProjectTwitter         string            `gorm:"column:project_twitter;type:varchar(255)" json:"project_twitter"`
	ParticipationType      ParticipationType `gorm:"column:participation_type;type:varchar(20);not null" json:"participation_type"`
	WalletAddress          string            `gorm:"column:wallet_address;type:varchar(128)" json:"wallet_address"`
	ParticipationAmount    decimal.Decimal   `gorm:"column:participation_amount;type:decimal(32,18)" json:"participation_amount"`
	ParticipationAmountUSD decimal.Decimal   `gorm:"column:participation_amount_usdt;type:decimal(32,18)" json:"participation_amount_usdt"`
	ParticipationToken     string            `gorm:"column:participation_token;type:varchar(32);index" json:"participation_token"`
	ParticipationDate      time.Time         `gorm:"column:participation_date;autoCreateTime" json:"participation_date"`
	ExpectedAirdropDate    *time.Time        `gorm:"column:expected_airdrop_date" json:"expected_airdrop_date"`
	ExpectedReward         string            `gorm:"column:expected_reward;type:varchar(255)" json:"expected_reward"`
	ActualReward           string            `gorm:"column:actual_reward;type:varchar(255)" json:"actual_reward"`
	ActualAPR              *decimal.Decimal  `gorm:"column:actual_apr;type:decimal(10,4)" json:"actual_apr"`
	Status                 Status            `gorm:"column:status;type:varchar(20);default:pending;index" json:"status"`
	WithdrawalStatus       string            `gorm:"column:withdrawal_status;type:varchar(20)" json:"withdrawal_status"`
	Notes                  string            `gorm:"column:notes;type:text" json:"notes"`
}

// TableName 空投参与表名
func (AirdropParticipation) TableName() string { return "airdrop_participations" }

// AirdropRepository 空投参与仓储接口
type AirdropRepository interface {
	Create(ctx context.Context, p *AirdropParticipation) error
	Update(ctx context.Context, p *AirdropParticipation) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*AirdropParticipation, error)
	List(ctx context.Context) ([]*AirdropParticipation, error)
	ListByStatus(ctx context.Context, status Status) ([]*AirdropParticipation, error)
	ListByType(ctx context.Context, ptype ParticipationType) ([]*AirdropParticipation, error)
	// DistinctTokens 表内出现过的全部参与 Token，供行情发现流程扫描
	DistinctTokens(ctx context.Context) ([]string, error)
}
