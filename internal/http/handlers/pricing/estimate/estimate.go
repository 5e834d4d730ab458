// Package estimate реализует HTTP-обработчик оценки стоимости ремонта.
//
// Оценка справочная: сервер не навязывает её заявке, клиент может передать
// свою цену при создании.
package estimate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/rephome/repair-booking/internal/http/response"
	"github.com/rephome/repair-booking/internal/pricing"
)

// Handler обрабатывает запросы на оценку стоимости ремонта.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Оценить стоимость ремонта
// @Description Возвращает оценку по бренду и типу неисправности. Неизвестные значения получают цену по умолчанию.
// @Tags Pricing
// @Produce  json
// @Param brand query string true "Бренд устройства"
// @Param issue query string true "Тип неисправности"
// @Success 200 {object} map[string]any "Оценка стоимости"
// @Failure 400 {object} response.ErrorResponse "Не указан бренд или неисправность"
// @Router /pricing/estimate [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pricing.estimate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	brand := r.URL.Query().Get("brand")
	issue := r.URL.Query().Get("issue")
	if brand == "" || issue == "" {
		log.Error("missing brand or issue query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("brand and issue query parameters are required"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"brand":    brand,
		"issue":    issue,
		"estimate": pricing.Estimate(brand, issue),
		"issues":   pricing.Issues(),
		"brands":   pricing.Brands(),
	}))
}
