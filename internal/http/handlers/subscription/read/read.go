// Package read реализует HTTP-обработчик чтения собственного абонемента.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на чтение абонемента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения абонемента.
type Service interface {
	GetMemberSubscription(ctx context.Context, memberUID string) (*models.SubscriptionInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Абонемент текущего участника
// @Description Возвращает абонемент участника с вычисленными правами и историей платежей.
// @Tags Subscriptions
// @Produce  json
// @Success 200 {object} map[string]any "Абонемент с правами"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Абонемент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberUID, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || memberUID == "" {
		log.Error("member uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	info, err := h.service.GetMemberSubscription(r.Context(), memberUID)
	if err != nil {
		log.Error("failed to read subscription", sl.Err(err))
		status, resp := response.DomainError(err, "could not read subscription")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription read", slog.String("type", info.Subscription.Type))
	render.JSON(w, r, response.OKWithData(info))
}
