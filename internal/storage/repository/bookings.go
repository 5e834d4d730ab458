package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rephome/repair-booking/internal/models"
)

const bookingColumns = `id, booking_number, user_uid, name, phone, email, address,
			      brand_name, device_model, issue, description, estimated_price,
			      preferred_date, preferred_time, status, email_verified,
			      otp_code, otp_expires_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var description sql.NullString
	var estimatedPrice sql.NullInt64
	var otpCode sql.NullString
	var otpExpiresAt sql.NullTime
	if err := row.Scan(&b.ID, &b.BookingNumber, &b.UserUID, &b.Name, &b.Phone, &b.Email,
		&b.Address, &b.BrandName, &b.DeviceModel, &b.Issue, &description, &estimatedPrice,
		&b.PreferredDate, &b.PreferredTime, &b.Status, &b.EmailVerified,
		&otpCode, &otpExpiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		b.Description = description.String
	}
	if estimatedPrice.Valid {
		price := int(estimatedPrice.Int64)
		b.EstimatedPrice = &price
	}
	if otpCode.Valid {
		b.OTPCode = &otpCode.String
	}
	if otpExpiresAt.Valid {
		b.OTPExpiresAt = &otpExpiresAt.Time
	}
	return b, nil
}

// CreateBooking сохраняет новую заявку и возвращает её ID.
func (s *Storage) CreateBooking(ctx context.Context, b models.Booking) (int64, error) {
	const op = "storage.CreateBooking"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO bookings (booking_number, user_uid, name, phone, email, address,
			      brand_name, device_model, issue, description, estimated_price,
			      preferred_date, preferred_time, status, email_verified,
			      otp_code, otp_expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		b.BookingNumber, b.UserUID, b.Name, b.Phone, b.Email, b.Address,
		b.BrandName, b.DeviceModel, b.Issue, nullString(b.Description), nullPrice(b.EstimatedPrice),
		b.PreferredDate, b.PreferredTime, b.Status, b.EmailVerified,
		b.OTPCode, b.OTPExpiresAt).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetBookingByNumber возвращает заявку по номеру, ограниченную владельцем.
// Чужая заявка неотличима от несуществующей.
func (s *Storage) GetBookingByNumber(ctx context.Context, bookingNumber, userUID string) (*models.Booking, error) {
	const op = "storage.GetBookingByNumber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE booking_number = $1 AND user_uid = $2`
	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, bookingNumber, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// ListBookingsByUser возвращает заявки пользователя, новые первыми.
func (s *Storage) ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error) {
	const op = "storage.ListBookingsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateBooking обновляет редактируемые владельцем поля заявки.
// Возвращает количество обновленных записей.
func (s *Storage) UpdateBooking(ctx context.Context, bookingNumber, userUID string, b models.Booking) (int64, error) {
	const op = "storage.UpdateBooking"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET name = $1, phone = $2, address = $3, brand_name = $4,
			      device_model = $5, issue = $6, description = $7, estimated_price = $8,
			      preferred_date = $9, preferred_time = $10, updated_at = now()
			  WHERE booking_number = $11 AND user_uid = $12`
	res, err := s.DB.ExecContext(ctx, query,
		b.Name, b.Phone, b.Address, b.BrandName,
		b.DeviceModel, b.Issue, nullString(b.Description), nullPrice(b.EstimatedPrice),
		b.PreferredDate, b.PreferredTime, bookingNumber, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CancelBooking переводит заявку владельца в cancelled.
// Завершенные заявки отменить нельзя.
func (s *Storage) CancelBooking(ctx context.Context, bookingNumber, userUID string) (int64, error) {
	const op = "storage.CancelBooking"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET status = $1, updated_at = now()
			  WHERE booking_number = $2 AND user_uid = $3 AND status <> $4`
	res, err := s.DB.ExecContext(ctx, query,
		models.StatusCancelled, bookingNumber, userUID, models.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SetBookingOTP перевыпускает код подтверждения для неподтвержденной заявки.
// Старый код затирается, действителен только новейший.
func (s *Storage) SetBookingOTP(ctx context.Context, bookingNumber, userUID, code string, expiresAt time.Time) (int64, error) {
	const op = "storage.SetBookingOTP"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET otp_code = $1, otp_expires_at = $2, updated_at = now()
			  WHERE booking_number = $3 AND user_uid = $4 AND email_verified = false`
	res, err := s.DB.ExecContext(ctx, query, code, expiresAt, bookingNumber, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ConfirmBookingByOTP помечает заявку подтвержденной и очищает код.
// Статус меняется только из pending, обе стороны гонки со sweep двигают
// заявку к одному и тому же значению.
func (s *Storage) ConfirmBookingByOTP(ctx context.Context, bookingNumber, userUID string) (*models.Booking, error) {
	const op = "storage.ConfirmBookingByOTP"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET email_verified = true,
			      otp_code = NULL,
			      otp_expires_at = NULL,
			      status = CASE WHEN status = $1 THEN $2 ELSE status END,
			      updated_at = now()
			  WHERE booking_number = $3 AND user_uid = $4
			  RETURNING ` + bookingColumns
	b, err := scanBooking(s.DB.QueryRowContext(ctx, query,
		models.StatusPending, models.StatusConfirmed, bookingNumber, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// ConfirmStalePending одним запросом подтверждает все зависшие pending-заявки,
// созданные не позже cutoff, и возвращает данные для уведомлений.
// Условие по статусу делает повторный запуск no-op.
func (s *Storage) ConfirmStalePending(ctx context.Context, cutoff time.Time) ([]models.ConfirmedNotice, error) {
	const op = "storage.ConfirmStalePending"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET status = $1, updated_at = now()
			  WHERE status = $2 AND created_at <= $3
			  RETURNING email, name, booking_number`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusConfirmed, models.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []models.ConfirmedNotice
	for rows.Next() {
		var n models.ConfirmedNotice
		if err = rows.Scan(&n.Email, &n.Name, &n.BookingNumber); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllBookings возвращает все заявки с данными владельцев для администратора.
func (s *Storage) ListAllBookings(ctx context.Context) ([]*models.AdminBooking, error) {
	const op = "storage.ListAllBookings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT b.id, b.booking_number, b.user_uid, b.name, b.phone, b.email, b.address,
			      b.brand_name, b.device_model, b.issue, b.description, b.estimated_price,
			      b.preferred_date, b.preferred_time, b.status, b.email_verified,
			      b.otp_code, b.otp_expires_at, b.created_at, b.updated_at,
			      u.name, u.email
			  FROM bookings b
			  JOIN users u ON u.uid = b.user_uid
			  ORDER BY b.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.AdminBooking
	for rows.Next() {
		ab := &models.AdminBooking{}
		var description sql.NullString
		var estimatedPrice sql.NullInt64
		var otpCode sql.NullString
		var otpExpiresAt sql.NullTime
		if err = rows.Scan(&ab.ID, &ab.BookingNumber, &ab.UserUID, &ab.Name, &ab.Phone, &ab.Email,
			&ab.Address, &ab.BrandName, &ab.DeviceModel, &ab.Issue, &description, &estimatedPrice,
			&ab.PreferredDate, &ab.PreferredTime, &ab.Status, &ab.EmailVerified,
			&otpCode, &otpExpiresAt, &ab.CreatedAt, &ab.UpdatedAt,
			&ab.OwnerName, &ab.OwnerEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if description.Valid {
			ab.Description = description.String
		}
		if estimatedPrice.Valid {
			price := int(estimatedPrice.Int64)
			ab.EstimatedPrice = &price
		}
		if otpCode.Valid {
			ab.OTPCode = &otpCode.String
		}
		if otpExpiresAt.Valid {
			ab.OTPExpiresAt = &otpExpiresAt.Time
		}
		result = append(result, ab)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AdminUpdateStatus принудительно выставляет статус заявки.
func (s *Storage) AdminUpdateStatus(ctx context.Context, bookingNumber, status string) (int64, error) {
	const op = "storage.AdminUpdateStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bookings
			  SET status = $1, updated_at = now()
			  WHERE booking_number = $2`
	res, err := s.DB.ExecContext(ctx, query, status, bookingNumber)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullPrice(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
