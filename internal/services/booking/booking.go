// Package booking реализует жизненный цикл заявки на ремонт: создание с
// выпуском кода подтверждения, проверку и перевыпуск кода, операции владельца
// и административные операции.
//
// Все операции владельца ограничены парой (номер заявки, uid владельца);
// чужая заявка неотличима от несуществующей.
package booking

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/metrics"
	"github.com/rephome/repair-booking/internal/models"
)

// Ошибки жизненного цикла заявки. Каждая проверка VerifyOTP имеет
// собственную причину отказа, причины не пересекаются.
var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyVerified  = errors.New("booking already verified")
	ErrNoOTPOutstanding = errors.New("no verification code outstanding, request a new one")
	ErrOTPExpired       = errors.New("verification code expired")
	ErrOTPMismatch      = errors.New("verification code does not match")
	ErrInvalidStatus    = errors.New("unknown booking status")
	ErrInvalidDate      = errors.New("invalid preferred date")
)

// preferredDateLayout формат даты визита в JSON-запросах.
const preferredDateLayout = "2006-01-02"

// Repository определяет методы хранилища для работы с заявками.
type Repository interface {
	CreateBooking(ctx context.Context, b models.Booking) (int64, error)
	GetBookingByNumber(ctx context.Context, bookingNumber, userUID string) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userUID string) ([]*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingNumber, userUID string, b models.Booking) (int64, error)
	CancelBooking(ctx context.Context, bookingNumber, userUID string) (int64, error)
	SetBookingOTP(ctx context.Context, bookingNumber, userUID, code string, expiresAt time.Time) (int64, error)
	ConfirmBookingByOTP(ctx context.Context, bookingNumber, userUID string) (*models.Booking, error)
	ListAllBookings(ctx context.Context) ([]*models.AdminBooking, error)
	AdminUpdateStatus(ctx context.Context, bookingNumber, status string) (int64, error)
}

// OTPSender доставляет код подтверждения на почту. Одна попытка, без ретраев.
type OTPSender interface {
	SendBookingOTP(to, bookingNumber, code string) error
}

// Publisher отправляет уведомление о подтвержденной заявке в очередь.
type Publisher interface {
	PublishConfirmed(notice models.ConfirmedNotice) error
}

// Service реализует бизнес-логику заявок на ремонт.
type Service struct {
	repo   Repository
	sender OTPSender
	pub    Publisher
	log    *slog.Logger
	otpTTL time.Duration
	now    func() time.Time
}

// New создает новый Service. nowFn позволяет подменять часы в тестах,
// nil означает time.Now.
func New(repo Repository, sender OTPSender, pub Publisher, log *slog.Logger, otpTTL time.Duration, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		repo:   repo,
		sender: sender,
		pub:    pub,
		log:    log,
		otpTTL: otpTTL,
		now:    nowFn,
	}
}

// generateOTP возвращает 6-значный код, равномерно из [0, 999999],
// с ведущими нулями.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// newBookingNumber выдает номер заявки вида RPH3F2A91C4.
// Случайный суффикс вместо усеченного timestamp исключает коллизии
// при одновременном создании заявок.
func newBookingNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RPH" + strings.ToUpper(raw[:8])
}

// Create сохраняет заявку в статусе pending с новым кодом подтверждения
// и пытается отправить код на почту. Неудачная отправка не отменяет
// создание заявки: вторым значением возвращается флаг доставки.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyBooking) (*models.Booking, bool, error) {
	const op = "booking.Create"

	preferredDate, err := time.Parse(preferredDateLayout, req.PreferredDate)
	if err != nil {
		return nil, false, ErrInvalidDate
	}

	code, err := generateOTP()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().Add(s.otpTTL)

	b := models.Booking{
		BookingNumber:  newBookingNumber(),
		UserUID:        userUID,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		BrandName:      req.BrandName,
		DeviceModel:    req.DeviceModel,
		Issue:          req.Issue,
		Description:    req.Description,
		EstimatedPrice: req.EstimatedPrice,
		PreferredDate:  preferredDate,
		PreferredTime:  req.PreferredTime,
		Status:         models.StatusPending,
		EmailVerified:  false,
		OTPCode:        &code,
		OTPExpiresAt:   &expiresAt,
	}

	id, err := s.repo.CreateBooking(ctx, b)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	b.ID = id
	metrics.BookingsCreated.Inc()
	s.log.Info("created new booking", slog.String("booking_number", b.BookingNumber))

	emailSent := true
	if err := s.sender.SendBookingOTP(b.Email, b.BookingNumber, code); err != nil {
		emailSent = false
		metrics.EmailSendFailures.Inc()
		s.log.Error("failed to send otp email", slog.String("booking_number", b.BookingNumber), sl.Err(err))
	}

	return &b, emailSent, nil
}

// VerifyOTP проверяет код подтверждения в строгом порядке: существование и
// принадлежность заявки, повторная проверка, наличие кода, срок, совпадение.
// Повторная проверка уже подтвержденной заявки не ошибка: возвращается
// заявка и флаг alreadyVerified без побочных эффектов.
func (s *Service) VerifyOTP(ctx context.Context, userUID, bookingNumber, code string) (*models.Booking, bool, error) {
	const op = "booking.VerifyOTP"

	b, err := s.repo.GetBookingByNumber(ctx, bookingNumber, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrBookingNotFound
		}
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if b.EmailVerified {
		return b, true, nil
	}
	if b.OTPCode == nil || b.OTPExpiresAt == nil {
		return nil, false, ErrNoOTPOutstanding
	}
	if s.now().After(*b.OTPExpiresAt) {
		return nil, false, ErrOTPExpired
	}
	if strings.TrimSpace(code) != *b.OTPCode {
		return nil, false, ErrOTPMismatch
	}

	confirmed, err := s.repo.ConfirmBookingByOTP(ctx, bookingNumber, userUID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.OTPVerified.Inc()
	s.log.Info("booking confirmed by otp", slog.String("booking_number", bookingNumber))

	// Заявка уже подтверждена в базе, неудачная публикация уведомления
	// не отменяет подтверждение.
	notice := models.ConfirmedNotice{
		Email:         confirmed.Email,
		Name:          confirmed.Name,
		BookingNumber: confirmed.BookingNumber,
	}
	if err := s.pub.PublishConfirmed(notice); err != nil {
		s.log.Error("failed to publish confirmation notice",
			slog.String("booking_number", bookingNumber), sl.Err(err))
	}
	return confirmed, false, nil
}

// ResendOTP перевыпускает код для неподтвержденной заявки и пытается
// отправить его. Старый код с этого момента недействителен.
func (s *Service) ResendOTP(ctx context.Context, userUID, bookingNumber string) (bool, error) {
	const op = "booking.ResendOTP"

	b, err := s.repo.GetBookingByNumber(ctx, bookingNumber, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrBookingNotFound
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if b.EmailVerified {
		return false, ErrAlreadyVerified
	}

	code, err := generateOTP()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	expiresAt := s.now().Add(s.otpTTL)

	count, err := s.repo.SetBookingOTP(ctx, bookingNumber, userUID, code, expiresAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		// Заявку успели подтвердить между чтением и перевыпуском.
		return false, ErrAlreadyVerified
	}

	if err := s.sender.SendBookingOTP(b.Email, bookingNumber, code); err != nil {
		metrics.EmailSendFailures.Inc()
		s.log.Error("failed to resend otp email", slog.String("booking_number", bookingNumber), sl.Err(err))
		return false, nil
	}
	return true, nil
}

// List возвращает заявки пользователя, новые первыми.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Booking, error) {
	return s.repo.ListBookingsByUser(ctx, userUID)
}

// Get возвращает заявку владельца по номеру.
func (s *Service) Get(ctx context.Context, userUID, bookingNumber string) (*models.Booking, error) {
	const op = "booking.Get"
	b, err := s.repo.GetBookingByNumber(ctx, bookingNumber, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// Update обновляет редактируемые владельцем поля заявки.
func (s *Service) Update(ctx context.Context, userUID, bookingNumber string, req models.DummyBookingUpdate) (*models.Booking, error) {
	const op = "booking.Update"

	preferredDate, err := time.Parse(preferredDateLayout, req.PreferredDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	b := models.Booking{
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		BrandName:      req.BrandName,
		DeviceModel:    req.DeviceModel,
		Issue:          req.Issue,
		Description:    req.Description,
		EstimatedPrice: req.EstimatedPrice,
		PreferredDate:  preferredDate,
		PreferredTime:  req.PreferredTime,
	}
	count, err := s.repo.UpdateBooking(ctx, bookingNumber, userUID, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, ErrBookingNotFound
	}
	return s.Get(ctx, userUID, bookingNumber)
}

// Cancel переводит заявку владельца в cancelled. Завершенную заявку
// отменить нельзя.
func (s *Service) Cancel(ctx context.Context, userUID, bookingNumber string) (*models.Booking, error) {
	const op = "booking.Cancel"
	count, err := s.repo.CancelBooking(ctx, bookingNumber, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, ErrBookingNotFound
	}
	return s.Get(ctx, userUID, bookingNumber)
}

// AdminList возвращает все заявки с данными владельцев.
func (s *Service) AdminList(ctx context.Context) ([]*models.AdminBooking, error) {
	return s.repo.ListAllBookings(ctx)
}

// AdminUpdateStatus принудительно выставляет статус заявки.
func (s *Service) AdminUpdateStatus(ctx context.Context, bookingNumber, status string) error {
	const op = "booking.AdminUpdateStatus"
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	count, err := s.repo.AdminUpdateStatus(ctx, bookingNumber, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrBookingNotFound
	}
	return nil
}
