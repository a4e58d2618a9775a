package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/tokenfolio/internal/defi/domain"
)

type fakeDefiRepo struct {
	ops    []*domain.DefiOperation
	nextID uint
}

func (r *fakeDefiRepo) Create(_ context.Context, op *domain.DefiOperation) error {
	r.nextID++
	op.ID = r.nextID
	r.ops = append(r.ops, op)
	return nil
}

func (r *fakeDefiRepo) Update(_ context.Context, op *domain.DefiOperation) error {
	for i, existing := range r.ops {
		if existing.ID == op.ID {
			r.ops[i] = op
			return nil
		}
	}
	return nil
}

func (r *fakeDefiRepo) Delete(_ context.Context, id uint) error { return nil }

func (r *fakeDefiRepo) GetByID(_ context.Context, id uint) (*domain.DefiOperation, error) {
	for _, op := range r.ops {
		if op.ID == id {
			return op, nil
		}
	}
	return nil, nil
}

func (r *fakeDefiRepo) List(_ context.Context) ([]*domain.DefiOperation, error) {
	return r.ops, nil
}

func (r *fakeDefiRepo) ListByProject(_ context.Context, project string) ([]*domain.DefiOperation, error) {
	var out []*domain.DefiOperation
	for _, op := range r.ops {
		if op.Project == project {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *fakeDefiRepo) SummaryByProject(_ context.Context) ([]*domain.ProjectSummary, error) {
	return nil, nil
}

func (r *fakeDefiRepo) DistinctTokens(_ context.Context) ([]string, error) {
	return nil, nil
}

func TestDefiServiceRecord(t *testing.T) {
	repo := &fakeDefiRepo{}
	svc := NewDefiService(repo)

	op := &domain.DefiOperation{
		Project:       " Aave ",
		OperationType: domain.OperationTypeStake,
		Token:         "eth",
		Quantity:      decimal.RequireFromString("10"),
	}
	require.NoError(t, svc.Record(context.Background(), op))
	assert.Equal(t, "Aave", op.Project)
	assert.Equal(t, "ETH", op.Token)

	assert.Error(t, svc.Record(context.Background(), &domain.DefiOperation{Token: "ETH"}))
	assert.Error(t, svc.Record(context.Background(), &domain.DefiOperation{Project: "Aave"}))
}

func TestDefiServiceMarkExited(t *testing.T) {
	repo := &fakeDefiRepo{}
	svc := NewDefiService(repo)
	op := &domain.DefiOperation{
		Project:       "Lido",
		OperationType: domain.OperationTypeStake,
		Token:         "ETH",
		Quantity:      decimal.RequireFromString("32"),
	}
	require.NoError(t, svc.Record(context.Background(), op))

	exitTime := time.Now()
	updated, err := svc.MarkExited(context.Background(), op.ID, exitTime)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.ExitTime)
	assert.True(t, updated.ExitTime.Equal(exitTime))

	missing, err := svc.MarkExited(context.Background(), 999, exitTime)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
