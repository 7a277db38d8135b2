// Package expiring реализует HTTP-обработчик списка истекающих абонементов.
package expiring

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на список истекающих абонементов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики поиска истекающих абонементов.
type Service interface {
	GetExpiringSubscriptions(ctx context.Context, thresholdDays int) ([]*models.ExpiringSubscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Истекающие абонементы
// @Description Возвращает активные абонементы, истекающие в ближайшие days дней, с количеством дней до конца действия. По умолчанию 7 дней.
// @Tags Subscriptions
// @Produce  json
// @Param days query int false "Порог в днях"
// @Success 200 {object} map[string]any "Список истекающих абонементов"
// @Failure 400 {object} response.ErrorResponse "Некорректный порог"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions/expiring [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.expiring"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			log.Error("failed to parse days parameter", slog.String("days", v))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid days parameter"))
			return
		}
		days = parsed
	}

	expiring, err := h.service.GetExpiringSubscriptions(r.Context(), days)
	if err != nil {
		log.Error("failed to list expiring subscriptions", sl.Err(err))
		status, resp := response.DomainError(err, "could not list expiring subscriptions")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("expiring subscriptions listed", slog.Int("count", len(expiring)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"expiring": expiring,
		"count":    len(expiring),
	}))
}
