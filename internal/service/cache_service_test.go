package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-health-api/internal/models"
	appErrors "github.com/noah-isme/sma-health-api/pkg/errors"
)

type memoryCacheRepo struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var alerts []models.InventoryAlert
	hit, err := svc.Get(ctx, inventoryAlertsCacheKey, &alerts)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, inventoryAlertsCacheKey, []models.InventoryAlert{{ItemID: "a", Type: models.AlertTypeLowStock}}, 0))
	assert.Equal(t, time.Minute, repo.ttls[inventoryAlertsCacheKey])

	hit, err = svc.Get(ctx, inventoryAlertsCacheKey, &alerts)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, alerts, 1)
	assert.Equal(t, "a", alerts[0].ItemID)

	require.NoError(t, svc.Invalidate(ctx, inventoryAlertsCacheKey))
	hit, err = svc.Get(ctx, inventoryAlertsCacheKey, &alerts)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceDisabledAndFailures(t *testing.T) {
	repo := newMemoryCacheRepo()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, disabled.Set(ctx, "k", 1, 0))
	assert.Empty(t, repo.data)

	enabled := NewCacheService(repo, nil, 0, nil, true)
	repo.getErr = errors.New("connection refused")
	var dest int
	hit, err := enabled.Get(ctx, "k", &dest)
	assert.False(t, hit)
	assert.Error(t, err)
}
