// Package create реализует HTTP-обработчик создания заявки на ремонт.
//
// Handler принимает JSON-запрос с данными заявки, валидирует их, извлекает
// uid пользователя из контекста и вызывает бизнес-логику создания. Код
// подтверждения в ответ не попадает, только флаг отправки письма.
package create

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

// Handler управляет HTTP-запросами на создание заявок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания заявки.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyBooking) (*models.Booking, bool, error)
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
// @Summary Создать заявку на ремонт
// @Description Создает заявку в статусе pending и отправляет код подтверждения на почту.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyBooking true "Данные новой заявки"
// @Success 200 {object} map[string]any "Заявка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /bookings [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBooking
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

	b, emailSent, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDate) {
			log.Error("invalid preferred date", slog.String("preferred_date", req.PreferredDate))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("preferred_date must be in format 2006-01-02"))
			return
		}
		log.Error("failed to create booking", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create booking"))
		return
	}

	log.Info("booking created", slog.String("booking_number", b.BookingNumber))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"booking":    b,
		"email_sent": emailSent,
	}))
}
