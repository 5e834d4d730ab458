package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rephome/repair-booking/internal/models"
)

const shopColumns = `id, name, rating, review_count, category, address, phone,
			      city, state, pincode, opening_hours, closing_hours, services,
			      description, years_in_business,
			      in_store_shopping, kerbside_pickup, delivery, in_store_pickup, created_at`

func scanShop(row interface{ Scan(...any) error }) (*models.Shop, error) {
	sh := &models.Shop{}
	var phone, state, pincode, openingHours, closingHours, description, years sql.NullString
	var services []byte
	if err := row.Scan(&sh.ID, &sh.Name, &sh.Rating, &sh.ReviewCount, &sh.Category, &sh.Address,
		&phone, &sh.City, &state, &pincode, &openingHours, &closingHours, &services,
		&description, &years,
		&sh.Features.InStoreShopping, &sh.Features.KerbsidePickup,
		&sh.Features.Delivery, &sh.Features.InStorePickup, &sh.CreatedAt); err != nil {
		return nil, err
	}
	sh.Phone = phone.String
	sh.State = state.String
	sh.Pincode = pincode.String
	sh.OpeningHours = openingHours.String
	sh.ClosingHours = closingHours.String
	sh.Description = description.String
	sh.YearsInBusiness = years.String
	if len(services) > 0 {
		if err := json.Unmarshal(services, &sh.Services); err != nil {
			return nil, err
		}
	}
	return sh, nil
}

// CreateShop сохраняет новую мастерскую и возвращает её ID.
func (s *Storage) CreateShop(ctx context.Context, sh models.Shop) (int64, error) {
	const op = "storage.CreateShop"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	services, err := json.Marshal(sh.Services)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newID int64
	query := `INSERT INTO shops (name, rating, review_count, category, address, phone,
			      city, state, pincode, opening_hours, closing_hours, services,
			      description, years_in_business,
			      in_store_shopping, kerbside_pickup, delivery, in_store_pickup)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		sh.Name, sh.Rating, sh.ReviewCount, sh.Category, sh.Address, nullString(sh.Phone),
		sh.City, nullString(sh.State), nullString(sh.Pincode),
		nullString(sh.OpeningHours), nullString(sh.ClosingHours), services,
		nullString(sh.Description), nullString(sh.YearsInBusiness),
		sh.Features.InStoreShopping, sh.Features.KerbsidePickup,
		sh.Features.Delivery, sh.Features.InStorePickup).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListShopsByCity возвращает до 10 мастерских города,
// лучшие по рейтингу и числу отзывов первыми.
func (s *Storage) ListShopsByCity(ctx context.Context, city string) ([]*models.Shop, error) {
	const op = "storage.ListShopsByCity"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + shopColumns + `
			  FROM shops
			  WHERE city = $1
			  ORDER BY rating DESC, review_count DESC
			  LIMIT 10`
	rows, err := s.DB.QueryContext(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Shop
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sh)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllShops возвращает весь справочник, новые первыми.
func (s *Storage) ListAllShops(ctx context.Context) ([]*models.Shop, error) {
	const op = "storage.ListAllShops"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + shopColumns + `
			  FROM shops
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Shop
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sh)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
