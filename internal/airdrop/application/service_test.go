package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/tokenfolio/internal/airdrop/domain"
)

type fakeAirdropRepo struct {
	ps     []*domain.AirdropParticipation
	nextID uint
}

func (r *fakeAirdropRepo) Create(_ context.Context, p *domain.AirdropParticipation) error {
	r.nextID++
	p.ID = r.nextID
	r.ps = append(r.ps, p)
	return nil
}

func (r *fakeAirdropRepo) Update(_ context.Context, p *domain.AirdropParticipation) error {
	for i, existing := range r.ps {
		if existing.ID == p.ID {
			r.ps[i] = p
			return nil
		}
	}
	return nil
}

func (r *fakeAirdropRepo) Delete(_ context.Context, id uint) error { return nil }

func (r *fakeAirdropRepo) GetByID(_ context.Context, id uint) (*domain.AirdropParticipation, error) {
	for _, p := range r.ps {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeAirdropRepo) List(_ context.Context) ([]*domain.AirdropParticipation, error) {
	return r.ps, nil
}

func (r *fakeAirdropRepo) ListByStatus(_ context.Context, status domain.Status) ([]*domain.AirdropParticipation, error) {
	var out []*domain.AirdropParticipation
	for _, p := range r.ps {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeAirdropRepo) ListByType(_ context.Context, ptype domain.ParticipationType) ([]*domain.AirdropParticipation, error) {
	var out []*domain.AirdropParticipation
	for _, p := range r.ps {
		if p.ParticipationType == ptype {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeAirdropRepo) DistinctTokens(_ context.Context) ([]string, error) {
	return nil, nil
}

func TestAirdropServiceRecord(t *testing.T) {
	repo := &fakeAirdropRepo{}
	svc := NewAirdropService(repo)

	p := &domain.AirdropParticipation{
		ProjectName:        " Scroll ",
		ParticipationType:  domain.ParticipationTypeTestnet,
		ParticipationToken: "eth",
	}
	require.NoError(t, svc.Record(context.Background(), p))

	// 规范化与默认状态
	assert.Equal(t, "Scroll", p.ProjectName)
	assert.Equal(t, "ETH", p.ParticipationToken)
	assert.Equal(t, domain.StatusPending, p.Status)

	assert.Error(t, svc.Record(context.Background(), &domain.AirdropParticipation{}))
}

func TestAirdropServiceSettle(t *testing.T) {
	repo := &fakeAirdropRepo{}
	svc := NewAirdropService(repo)
	p := &domain.AirdropParticipation{
		ProjectName:       "LayerZero",
		ParticipationType: domain.ParticipationTypeTrade,
	}
	require.NoError(t, svc.Record(context.Background(), p))

	apr := decimal.RequireFromString("12.5")
	settled, err := svc.Settle(context.Background(), p.ID, SettleResult{
		Status:       domain.StatusReceived,
		ActualReward: "500 ZRO",
		ActualAPR:    &apr,
	})
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.Equal(t, domain.StatusReceived, settled.Status)
	assert.Equal(t, "500 ZRO", settled.ActualReward)

	// pending 不是合法的结算状态
	_, err = svc.Settle(context.Background(), p.ID, SettleResult{Status: domain.StatusPending})
	assert.Error(t, err)

	missing, err := svc.Settle(context.Background(), 999, SettleResult{Status: domain.StatusFailed})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAirdropServiceListFilters(t *testing.T) {
	repo := &fakeAirdropRepo{}
	svc := NewAirdropService(repo)

	for _, p := range []*domain.AirdropParticipation{
		{ProjectName: "A", ParticipationType: domain.ParticipationTypeTestnet},
		{ProjectName: "B", ParticipationType: domain.ParticipationTypeTrade},
		{ProjectName: "C", ParticipationType: domain.ParticipationTypeTestnet, Status: domain.StatusReceived},
	} {
		require.NoError(t, svc.Record(context.Background(), p))
	}

	all, err := svc.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	received, err := svc.List(context.Background(), "received", "")
	require.NoError(t, err)
	assert.Len(t, received, 1)

	testnet, err := svc.List(context.Background(), "", "testnet")
	require.NoError(t, err)
	assert.Len(t, testnet, 2)
}
