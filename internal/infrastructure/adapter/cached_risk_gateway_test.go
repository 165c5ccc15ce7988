package adapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic/loan-origination/internal/domain/valueobject"
	"github.com/optic/loan-origination/internal/infrastructure/adapter"
)

type countingGateway struct {
	calls int
	err   error
}

func (g *countingGateway) Assess(_ context.Context, document string) (valueobject.RiskAssessment, error) {
	g.calls++
	if g.err != nil {
		return valueobject.RiskAssessment{}, g.err
	}
	return valueobject.NewRiskAssessment(document, valueobject.RiskTierMedium, "APROBADO"), nil
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedRiskGateway_ReadThrough(t *testing.T) {
	mr, rdb := setupRedis(t)
	inner := &countingGateway{}
	gw := adapter.NewCachedRiskGateway(inner, rdb, time.Minute, nil)

	first, err := gw.Assess(context.Background(), "71234567")
	require.NoError(t, err)
	second, err := gw.Assess(context.Background(), "71234567")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Tier(), second.Tier())
	assert.True(t, second.Approved())
	assert.True(t, mr.Exists("origination:risk:71234567"))

	mr.FastForward(2 * time.Minute)
	_, err = gw.Assess(context.Background(), "71234567")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedRiskGateway_FailuresNotCached(t *testing.T) {
	mr, rdb := setupRedis(t)
	inner := &countingGateway{err: errors.New("down")}
	gw := adapter.NewCachedRiskGateway(inner, rdb, time.Minute, nil)

	_, err := gw.Assess(context.Background(), "71234567")
	require.Error(t, err)
	assert.False(t, mr.Exists("origination:risk:71234567"))
}

func TestCachedRiskGateway_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := setupRedis(t)
	mr.Close()
	inner := &countingGateway{}
	gw := adapter.NewCachedRiskGateway(inner, rdb, time.Minute, nil)

	a, err := gw.Assess(context.Background(), "71234567")
	require.NoError(t, err)
	assert.Equal(t, valueobject.RiskTierMedium, a.Tier())
	assert.Equal(t, 1, inner.calls)
}

func TestCachedRiskGateway_Invalidate(t *testing.T) {
	mr, rdb := setupRedis(t)
	inner := &countingGateway{}
	gw := adapter.NewCachedRiskGateway(inner, rdb, time.Minute, nil)

	_, err := gw.Assess(context.Background(), "71234567")
	require.NoError(t, err)
	require.NoError(t, gw.Invalidate(context.Background(), "71234567"))
	assert.False(t, mr.Exists("origination:risk:71234567"))
}
