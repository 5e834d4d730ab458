// Package read реализует HTTP-обработчик получения заявки по номеру.
//
// Заявка другого пользователя неотличима от несуществующей: в обоих
// случаях возвращается 404.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rephome/repair-booking/internal/http/middlewarectx"
	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/models"
	"github.com/rephome/repair-booking/internal/services/booking"
)

// Handler обрабатывает запросы на получение заявки по номеру.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения заявки.
type Service interface {
	Get(ctx context.Context, userUID, bookingNumber string) (*models.Booking, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить заявку по номеру
// @Description Возвращает заявку текущего пользователя по её номеру.
// @Tags Bookings
// @Produce  json
// @Security BearerAuth
// @Param number path string true "Номер заявки"
// @Success 200 {object} map[string]any "Данные заявки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/{number} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	number := chi.URLParam(r, "number")
	b, err := h.service.Get(r.Context(), userUID, number)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			log.Error("booking not found", slog.String("booking_number", number))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("booking not found"))
			return
		}
		log.Error("failed to read booking", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read booking"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking": b,
	}))
}
