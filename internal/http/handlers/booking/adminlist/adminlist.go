// Package adminlist реализует HTTP-обработчик админского списка всех заявок.
package adminlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/lib/sl"
	"github.com/rephome/repair-booking/internal/models"
)

// Handler обрабатывает админские запросы на список всех заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики админского списка.
type Service interface {
	AdminList(ctx context.Context) ([]*models.AdminBooking, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Все заявки (админ)
// @Description Возвращает все заявки с данными владельцев, новые первыми.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings/admin/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.adminlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookings, err := h.service.AdminList(r.Context())
	if err != nil {
		log.Error("failed to list all bookings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list bookings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	}))
}
