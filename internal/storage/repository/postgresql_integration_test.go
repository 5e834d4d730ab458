package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rephome/repair-booking/internal/models"
)

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.RegisterUser(ctx, models.User{
		Name:         "Ravi",
		Email:        "ravi@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleCustomer,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	// Почта уникальна без учета регистра
	_, err = storage.RegisterUser(ctx, models.User{
		Name:         "Ravi Again",
		Email:        "RAVI@example.com",
		PasswordHash: "hashedpassword",
		Role:         models.RoleCustomer,
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestStorage_GetUserByEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "Ravi", "ravi@example.com")

	got, err := storage.GetUserByEmail(ctx, "Ravi@Example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)

	_, err = storage.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_CreateAndGetBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	stranger := factory.CreateUser(t, "Priya", "priya@example.com")

	id, err := storage.CreateBooking(ctx, GetTestBooking(owner, "RPHAB12CD34"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := storage.GetBookingByNumber(ctx, "RPHAB12CD34", owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.False(t, got.EmailVerified)
	require.NotNil(t, got.OTPCode)
	assert.Equal(t, "042137", *got.OTPCode)

	// Чужая заявка неотличима от несуществующей
	_, err = storage.GetBookingByNumber(ctx, "RPHAB12CD34", stranger)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStorage_ConfirmBookingByOTP(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")

	_, err := storage.CreateBooking(ctx, GetTestBooking(owner, "RPHAB12CD34"))
	require.NoError(t, err)

	got, err := storage.ConfirmBookingByOTP(ctx, "RPHAB12CD34", owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.True(t, got.EmailVerified)
	assert.Nil(t, got.OTPCode)
	assert.Nil(t, got.OTPExpiresAt)
}

func TestStorage_ConfirmBookingByOTP_KeepsNonPendingStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	factory.CreateBooking(t, owner, "RPHAB12CD34", models.StatusInProgress, time.Now())

	got, err := storage.ConfirmBookingByOTP(ctx, "RPHAB12CD34", owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.True(t, got.EmailVerified)
}

func TestStorage_SetBookingOTP_SkipsVerified(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")

	_, err := storage.CreateBooking(ctx, GetTestBooking(owner, "RPHAB12CD34"))
	require.NoError(t, err)

	count, err := storage.SetBookingOTP(ctx, "RPHAB12CD34", owner, "999999", time.Now().Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = storage.ConfirmBookingByOTP(ctx, "RPHAB12CD34", owner)
	require.NoError(t, err)

	count, err = storage.SetBookingOTP(ctx, "RPHAB12CD34", owner, "111111", time.Now().Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStorage_CancelBooking(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	factory.CreateBooking(t, owner, "RPH11111111", models.StatusConfirmed, time.Now())
	factory.CreateBooking(t, owner, "RPH22222222", models.StatusCompleted, time.Now())

	count, err := storage.CancelBooking(ctx, "RPH11111111", owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Завершенную заявку отменить нельзя
	count, err = storage.CancelBooking(ctx, "RPH22222222", owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStorage_ConfirmStalePending(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")

	now := time.Now()
	factory.CreateBooking(t, owner, "RPH11111111", models.StatusPending, now.Add(-5*time.Minute))
	factory.CreateBooking(t, owner, "RPH22222222", models.StatusPending, now.Add(-30*time.Second))
	factory.CreateBooking(t, owner, "RPH33333333", models.StatusCancelled, now.Add(-5*time.Minute))

	notices, err := storage.ConfirmStalePending(ctx, now.Add(-2*time.Minute))
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "RPH11111111", notices[0].BookingNumber)
	assert.Equal(t, "ravi@example.com", notices[0].Email)

	// Повторный запуск ничего не находит
	notices, err = storage.ConfirmStalePending(ctx, now.Add(-2*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, notices)

	// Свежая заявка осталась pending
	fresh, err := storage.GetBookingByNumber(ctx, "RPH22222222", owner)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fresh.Status)
}

func TestStorage_ListBookingsByUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	other := factory.CreateUser(t, "Priya", "priya@example.com")

	now := time.Now()
	factory.CreateBooking(t, owner, "RPH11111111", models.StatusPending, now.Add(-2*time.Hour))
	factory.CreateBooking(t, owner, "RPH22222222", models.StatusConfirmed, now.Add(-time.Hour))
	factory.CreateBooking(t, other, "RPH33333333", models.StatusPending, now)

	got, err := storage.ListBookingsByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Новые первыми
	assert.Equal(t, "RPH22222222", got[0].BookingNumber)
	assert.Equal(t, "RPH11111111", got[1].BookingNumber)
}

func TestStorage_ListAllBookings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	factory.CreateBooking(t, owner, "RPH11111111", models.StatusPending, time.Now())

	got, err := storage.ListAllBookings(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ravi", got[0].OwnerName)
	assert.Equal(t, "ravi@example.com", got[0].OwnerEmail)
}

func TestStorage_AdminUpdateStatus(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	owner := factory.CreateUser(t, "Ravi", "ravi@example.com")
	factory.CreateBooking(t, owner, "RPH11111111", models.StatusConfirmed, time.Now())

	count, err := storage.AdminUpdateStatus(ctx, "RPH11111111", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = storage.AdminUpdateStatus(ctx, "RPH00000000", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStorage_ListShopsByCity(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	// 12 мастерских в городе, две лишние должны отсечься лимитом
	for i := range 12 {
		_, err := storage.CreateShop(ctx, models.Shop{
			Name:        "Shop",
			Rating:      float64(i) / 10,
			ReviewCount: i,
			Category:    "Mobile phone repair shop",
			Address:     "Chowk Bazar",
			City:        "Mathura",
			Services:    []string{"Screen replacement"},
		})
		require.NoError(t, err)
	}
	_, err := storage.CreateShop(ctx, models.Shop{
		Name:     "Elsewhere",
		Rating:   5.0,
		Category: "Mobile phone repair shop",
		Address:  "Main Road",
		City:     "Agra",
	})
	require.NoError(t, err)

	got, err := storage.ListShopsByCity(ctx, "Mathura")
	require.NoError(t, err)
	require.Len(t, got, 10)
	// Лучшие по рейтингу первыми, чужой город не попадает
	assert.Equal(t, 1.1, got[0].Rating)
	for _, sh := range got {
		assert.Equal(t, "Mathura", sh.City)
	}
}
