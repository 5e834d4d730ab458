// Package resendotp реализует HTTP-обработчик перевыпуска кода подтверждения.
package resendotp

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
	"github.com/rephome/repair-booking/internal/services/booking"
)

// Request — входные данные перевыпуска кода.
type Request struct {
	BookingNumber string `json:"booking_number" validate:"required"`
}

// Handler обрабатывает запросы на перевыпуск кода подтверждения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики перевыпуска кода.
type Service interface {
	ResendOTP(ctx context.Context, userUID, bookingNumber string) (bool, error)
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
// @Summary Перевыпустить код подтверждения
// @Description Выпускает новый код для неподтвержденной заявки, старый код перестает действовать.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Номер заявки"
// @Success 200 {object} map[string]any "Код перевыпущен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/resend-otp [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.resendotp"
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

	emailSent, err := h.service.ResendOTP(r.Context(), userUID, req.BookingNumber)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			log.Error("booking not found", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
		case errors.Is(err, booking.ErrAlreadyVerified):
			log.Error("booking already verified", slog.String("booking_number", req.BookingNumber))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("booking already verified"))
		default:
			log.Error("failed to resend verification code", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resend verification code"))
		}
		return
	}

	log.Info("verification code resent", slog.String("booking_number", req.BookingNumber),
		slog.Bool("email_sent", emailSent))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"email_sent": emailSent,
	}))
}
