// Package update реализует HTTP-обработчик оформления или замены абонемента.
//
// Доступен только администратору. Принимает JSON-запрос с типом абонемента,
// датами действия и уплаченной суммой, вызывает бизнес-логику и возвращает
// абонемент с вычисленными правами.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на оформление абонемента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики оформления абонемента.
type Service interface {
	UpdateSubscription(ctx context.Context, memberUID, adminUID string, req models.DummyUpdateSubscription) (*models.SubscriptionInfo, error)
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
// @Summary Оформить или заменить абонемент участника
// @Description Создает или заменяет абонемент участника и добавляет запись об оплате. Права выводятся из типа абонемента на чтении.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param memberID path string true "Идентификатор участника"
// @Param request body models.DummyUpdateSubscription true "Данные абонемента"
// @Success 200 {object} map[string]any "Абонемент оформлен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или тип абонемента"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /members/{memberID}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUpdateSubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	adminUID, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || adminUID == "" {
		log.Error("admin uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	memberID := chi.URLParam(r, "memberID")
	info, err := h.service.UpdateSubscription(r.Context(), memberID, adminUID, req)
	if err != nil {
		log.Error("failed to update subscription", sl.Err(err))
		status, resp := response.DomainError(err, "could not update subscription")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("subscription updated",
		slog.String("member_uid", memberID),
		slog.String("type", info.Subscription.Type))
	render.JSON(w, r, response.OKWithData(info))
}
