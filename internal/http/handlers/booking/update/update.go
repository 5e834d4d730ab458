// Package update реализует HTTP-обработчик изменения заявки владельцем.
package update

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

	"github.com/rephome/repair-booking/internal/http/middlewarectx"
	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/services/booking"
)

// Handler обрабатывает запросы на изменение заявки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения заявки.
type Service interface {
	Update(ctx context.Context, userUID, bookingNumber string, req models.DummyBookingUpdate) (*models.Booking, error)
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
// @Summary Изменить заявку
// @Description Обновляет редактируемые владельцем поля заявки. Статус и подтверждение не меняются.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param number path string true "Номер заявки"
// @Param request body models.DummyBookingUpdate true "Новые данные заявки"
// @Success 200 {object} map[string]any "Обновленная заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/{number} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBookingUpdate
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

	number := chi.URLParam(r, "number")
	b, err := h.service.Update(r.Context(), userUID, number, req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			log.Error("booking not found", slog.String("booking_number", number))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
		case errors.Is(err, booking.ErrInvalidDate):
			log.Error("invalid preferred date", slog.String("preferred_date", req.PreferredDate))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("preferred_date must be in format 2006-01-02"))
		default:
			log.Error("failed to update booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update booking"))
		}
		return
	}

	log.Info("booking updated", slog.String("booking_number", number))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking": b,
	}))
}
