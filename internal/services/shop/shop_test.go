package shop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rephome/repair-booking/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateShop(ctx context.Context, sh models.Shop) (int64, error) {
	args := m.Called(ctx, sh)
	return int64(args.Int(0)), args.Error(1)
}

func (m *MockRepository) ListShopsByCity(ctx context.Context, city string) ([]*models.Shop, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Shop), args.Error(1)
}

func (m *MockRepository) ListAllShops(ctx context.Context) ([]*models.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Shop), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListNearby_CacheMissQueriesConfiguredCity(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)

	shops := []*models.Shop{{ID: 1, Name: "Shri Mobile Care", City: "Mathura", Rating: 4.8}}
	cache.On("Get", "shops:nearby:Mathura", mock.Anything).Return(false, nil).Once()
	repo.On("ListShopsByCity", mock.Anything, "Mathura").Return(shops, nil).Once()
	cache.On("Set", "shops:nearby:Mathura", shops, 5*time.Minute).Return(nil).Once()

	got, err := New(repo, cache, newNoopLogger(), "Mathura").ListNearby(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shops, got)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestListNearby_CacheHitSkipsStorage(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)

	cache.On("Get", "shops:nearby:Mathura", mock.Anything).Return(true, nil).Once()

	_, err := New(repo, cache, newNoopLogger(), "Mathura").ListNearby(context.Background())
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListShopsByCity", mock.Anything, mock.Anything)
}

func TestListNearby_CacheErrorFallsBackToStorage(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)

	shops := []*models.Shop{{ID: 2, Name: "Mathura Phone Clinic"}}
	cache.On("Get", mock.Anything, mock.Anything).Return(false, fmt.Errorf("redis down")).Once()
	repo.On("ListShopsByCity", mock.Anything, "Mathura").Return(shops, nil).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("redis down")).Once()

	got, err := New(repo, cache, newNoopLogger(), "Mathura").ListNearby(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shops, got)
}

func TestCreate_InvalidatesCache(t *testing.T) {
	repo := new(MockRepository)
	cache := new(MockCache)

	repo.On("CreateShop", mock.Anything, mock.MatchedBy(func(sh models.Shop) bool {
		return sh.Name == "Shri Mobile Care" && sh.City == "Mathura"
	})).Return(5, nil).Once()
	cache.On("Invalidate", "shops:nearby:Mathura").Return(nil).Once()

	id, err := New(repo, cache, newNoopLogger(), "Mathura").Create(context.Background(), models.DummyShop{
		Name:     "Shri Mobile Care",
		Category: "Mobile phone repair shop",
		Address:  "Chowk Bazar",
		City:     "Mathura",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
