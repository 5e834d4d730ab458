// Package shop содержит бизнес-логику справочника ремонтных мастерских.
// Сервис работает в одном городе, поэтому публичная выдача всегда
// строится по городу из конфигурации.
package shop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/models"
)

// nearbyCacheTTL время жизни кешированной выдачи мастерских.
const nearbyCacheTTL = 5 * time.Minute

// Repository определяет методы хранилища для работы с мастерскими.
type Repository interface {
	CreateShop(ctx context.Context, sh models.Shop) (int64, error)
	ListShopsByCity(ctx context.Context, city string) ([]*models.Shop, error)
	ListAllShops(ctx context.Context) ([]*models.Shop, error)
}

// Cache описывает JSON-кеш для выдачи мастерских.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service отвечает за справочник мастерских.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	city  string
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger, city string) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		city:  city,
	}
}

func (s *Service) cacheKey() string {
	return "shops:nearby:" + s.city
}

// ListNearby возвращает до 10 лучших мастерских города сервиса.
// Выдача кешируется, ошибки кеша не мешают ответу из базы.
func (s *Service) ListNearby(ctx context.Context) ([]*models.Shop, error) {
	const op = "shop.ListNearby"

	var cached []*models.Shop
	found, err := s.cache.Get(s.cacheKey(), &cached)
	if err != nil {
		s.log.Warn("failed to read shops from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	shops, err := s.repo.ListShopsByCity(ctx, s.city)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(s.cacheKey(), shops, nearbyCacheTTL); err != nil {
		s.log.Warn("failed to cache shops", sl.Err(err))
	}
	return shops, nil
}

// ListAll возвращает весь справочник без фильтра по городу.
func (s *Service) ListAll(ctx context.Context) ([]*models.Shop, error) {
	const op = "shop.ListAll"
	shops, err := s.repo.ListAllShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return shops, nil
}

// Create добавляет мастерскую в справочник и сбрасывает кеш выдачи.
func (s *Service) Create(ctx context.Context, req models.DummyShop) (int64, error) {
	const op = "shop.Create"

	sh := models.Shop{
		Name:            req.Name,
		Rating:          req.Rating,
		ReviewCount:     req.ReviewCount,
		Category:        req.Category,
		Address:         req.Address,
		Phone:           req.Phone,
		City:            req.City,
		State:           req.State,
		Pincode:         req.Pincode,
		OpeningHours:    req.OpeningHours,
		ClosingHours:    req.ClosingHours,
		Services:        req.Services,
		Description:     req.Description,
		YearsInBusiness: req.YearsInBusiness,
		Features:        req.Features,
	}
	id, err := s.repo.CreateShop(ctx, sh)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(s.cacheKey()); err != nil {
		s.log.Warn("failed to invalidate shops cache", sl.Err(err))
	}
	s.log.Info("created new shop", slog.Int64("shop_id", id), slog.String("city", sh.City))
	return id, nil
}
