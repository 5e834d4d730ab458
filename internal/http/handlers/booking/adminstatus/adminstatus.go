// Package adminstatus реализует HTTP-обработчик принудительной смены статуса
// заявки администратором.
package adminstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/services/booking"
)

// Request — входные данные смены статуса.
type Request struct {
	Status string `json:"status" validate:"required"`
}

// Handler обрабатывает админские запросы на смену статуса заявки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены статуса.
type Service interface {
	AdminUpdateStatus(ctx context.Context, bookingNumber, status string) error
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
// @Summary Сменить статус заявки (админ)
// @Description Принудительно выставляет любой допустимый статус заявки.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param number path string true "Номер заявки"
// @Param request body Request true "Новый статус"
// @Success 200 {object} map[string]any "Статус обновлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Неизвестный статус"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/admin/{number}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.adminstatus"
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

	number := chi.URLParam(r, "number")
	if err := h.service.AdminUpdateStatus(r.Context(), number, req.Status); err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			log.Error("booking not found", slog.String("booking_number", number))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
		case errors.Is(err, booking.ErrInvalidStatus):
			log.Error("unknown booking status", slog.String("status", req.Status))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown booking status"))
		default:
			log.Error("failed to update booking status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update booking status"))
		}
		return
	}

	log.Info("booking status updated", slog.String("booking_number", number),
		slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking_number": number,
		"status":         req.Status,
	}))
}
