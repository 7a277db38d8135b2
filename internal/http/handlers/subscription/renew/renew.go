// Package renew реализует HTTP-обработчик продления абонемента.
package renew

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на продление абонемента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики продления абонемента.
type Service interface {
	ProcessRenewal(ctx context.Context, memberUID, adminUID string, paid bool) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Продлить абонемент участника
// @Description При оплате сдвигает конец действия на календарный месяц от текущего endDate. Без оплаты переводит абонемент в pending_renewal и пересчитывает задолженность.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param memberID path string true "Идентификатор участника"
// @Param request body models.DummyRenewal true "Признак оплаты"
// @Success 200 {object} map[string]any "Результат продления"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Абонемент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /members/{memberID}/renewal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.renew"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRenewal
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	adminUID, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || adminUID == "" {
		log.Error("admin uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	memberID := chi.URLParam(r, "memberID")
	sub, err := h.service.ProcessRenewal(r.Context(), memberID, adminUID, req.Paid)
	if err != nil {
		log.Error("failed to process renewal", sl.Err(err))
		status, resp := response.DomainError(err, "could not process renewal")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("renewal processed",
		slog.String("member_uid", memberID),
		slog.String("status", sub.Status))
	render.JSON(w, r, response.OKWithData(sub))
}
