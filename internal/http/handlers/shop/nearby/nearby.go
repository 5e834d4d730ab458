// Package nearby реализует HTTP-обработчик публичной выдачи мастерских.
//
// Сервис работает в одном городе, поэтому выдача всегда строится по городу
// из конфигурации, без параметров запроса.
package nearby

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

// Handler обрабатывает запросы на список мастерских рядом.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи мастерских.
type Service interface {
	ListNearby(ctx context.Context) ([]*models.Shop, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мастерские рядом
// @Description Возвращает до 10 лучших мастерских города сервиса, лучшие по рейтингу первыми.
// @Tags Shops
// @Produce  json
// @Success 200 {object} map[string]any "Список мастерских"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /shops/nearby [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.shop.nearby"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	shops, err := h.service.ListNearby(r.Context())
	if err != nil {
		log.Error("failed to list nearby shops", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list shops"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"shops": shops,
		"count": len(shops),
	}))
}
