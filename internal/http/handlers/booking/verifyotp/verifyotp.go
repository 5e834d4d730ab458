// Package verifyotp реализует HTTP-обработчик подтверждения заявки кодом.
//
// Каждая причина отказа различима по сообщению: нет кода, код истек, код
// не совпал. Повторное подтверждение уже подтвержденной заявки не ошибка.
package verifyotp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rephome/repair-booking/internal/http/middlewarectx"
	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/services/booking"
)

// Request — входные данные подтверждения заявки.
type Request struct {
	BookingNumber string `json:"booking_number" validate:"required"`
	OTP           string `json:"otp" validate:"required"`
}

// Handler обрабатывает запросы на подтверждение заявки кодом из письма.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	VerifyOTP(ctx context.Context, userUID, bookingNumber, code string) (*models.Booking, bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтвердить заявку кодом
// @Description Проверяет код подтверждения и переводит заявку в confirmed.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Номер заявки и код"
// @Success 200 {object} map[string]any "Заявка подтверждена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON, нет кода, код истек или не совпал"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/verify-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.verifyotp"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	b, alreadyVerified, err := h.service.VerifyOTP(r.Context(), userUID, req.BookingNumber, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			log.Error("booking not found", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
		case errors.Is(err, booking.ErrNoOTPOutstanding):
			log.Error("no verification code outstanding", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no verification code outstanding, request a new one"))
		case errors.Is(err, booking.ErrOTPExpired):
			log.Error("verification code expired", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("verification code expired"))
		case errors.Is(err, booking.ErrOTPMismatch):
			log.Error("verification code mismatch", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("verification code does not match"))
		default:
			log.Error("failed to verify booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not verify booking"))
		}
		return
	}

	log.Info("booking verified", slog.String("booking_number", req.BookingNumber),
		slog.Bool("already_verified", alreadyVerified))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking":          b,
		"already_verified": alreadyVerified,
	}))
}
