package repository

import (
	"context"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rephome/repair-booking/internal/models"
)

// setupTestDatabase поднимает контейнер PostgreSQL и создает схему.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Подключаемся с ретраями: контейнер может принять соединение не сразу
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	_, err = storage.DB.Exec(`
        CREATE EXTENSION IF NOT EXISTS pgcrypto;

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
        CREATE UNIQUE INDEX users_email_lower_idx ON users (lower(email));

        CREATE TABLE bookings (
            id BIGSERIAL PRIMARY KEY,
            booking_number TEXT NOT NULL UNIQUE,
            user_uid UUID NOT NULL REFERENCES users (uid),
            name TEXT NOT NULL,
            phone TEXT NOT NULL,
            email TEXT NOT NULL,
            address TEXT NOT NULL,
            brand_name TEXT NOT NULL,
            device_model TEXT NOT NULL,
            issue TEXT NOT NULL,
            description TEXT,
            estimated_price INTEGER,
            preferred_date DATE NOT NULL,
            preferred_time TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'confirmed', 'in_progress', 'completed', 'cancelled')),
            email_verified BOOLEAN NOT NULL DEFAULT false,
            otp_code TEXT,
            otp_expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE shops (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            rating DOUBLE PRECISION NOT NULL DEFAULT 0,
            review_count INTEGER NOT NULL DEFAULT 0,
            category TEXT NOT NULL,
            address TEXT NOT NULL,
            phone TEXT,
            city TEXT NOT NULL,
            state TEXT,
            pincode TEXT,
            opening_hours TEXT,
            closing_hours TEXT,
            services JSONB,
            description TEXT,
            years_in_business TEXT,
            in_store_shopping BOOLEAN NOT NULL DEFAULT false,
            kerbside_pickup BOOLEAN NOT NULL DEFAULT false,
            delivery BOOLEAN NOT NULL DEFAULT false,
            in_store_pickup BOOLEAN NOT NULL DEFAULT false,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `)
	require.NoError(t, err, "failed to create schema")

	cleanup := func() {
		_ = storage.DB.Close()
		_ = container.Terminate(ctx)
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его uid
func (f *TestDataFactory) CreateUser(t *testing.T, name, email string) string {
	var uid string
	err := f.storage.DB.QueryRow(`INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, 'hashedpassword', 'customer') RETURNING uid`, name, email).Scan(&uid)
	require.NoError(t, err)
	return uid
}

// CreateBooking создает тестовую заявку напрямую в базе
func (f *TestDataFactory) CreateBooking(t *testing.T, userUID, number, status string, createdAt time.Time) {
	_, err := f.storage.DB.Exec(`INSERT INTO bookings
		(booking_number, user_uid, name, phone, email, address, brand_name,
		 device_model, issue, preferred_date, preferred_time, status, created_at, updated_at)
		VALUES ($1, $2, 'Ravi', '+91 9876543210', 'ravi@example.com', 'Mathura',
		 'Apple', 'iPhone 14', 'screen-crack', '2025-06-20', '10:00-12:00', $3, $4, $4)`,
		number, userUID, status, createdAt)
	require.NoError(t, err)
}

// GetTestBooking возвращает стандартную заявку для вставки через репозиторий
func GetTestBooking(userUID, number string) models.Booking {
	code := "042137"
	expiresAt := time.Now().Add(10 * time.Minute)
	return models.Booking{
		BookingNumber: number,
		UserUID:       userUID,
		Name:          "Ravi Sharma",
		Phone:         "+91 9876543210",
		Email:         "ravi@example.com",
		Address:       "12 Krishna Nagar, Mathura",
		BrandName:     "Apple",
		DeviceModel:   "iPhone 14",
		Issue:         "screen-crack",
		PreferredDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
		PreferredTime: "10:00-12:00",
		Status:        models.StatusPending,
		OTPCode:       &code,
		OTPExpiresAt:  &expiresAt,
	}
}
