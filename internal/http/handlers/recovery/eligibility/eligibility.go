// Package eligibility реализует HTTP-обработчик проверки права на отработку.
package eligibility

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

// Handler управляет HTTP-запросами на проверку права на отработку.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки права на отработку.
type Service interface {
	GetRecoveryEligibility(ctx context.Context, memberUID string) (*models.RecoveryEligibility, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Право на запись отработки
// @Description Возвращает, может ли участник записаться на отработку, и остаток месячной квоты.
// @Tags Recoveries
// @Produce  json
// @Success 200 {object} map[string]any "Результат проверки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Участник не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /recoveries/eligibility [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recovery.eligibility"
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

	result, err := h.service.GetRecoveryEligibility(r.Context(), memberUID)
	if err != nil {
		log.Error("failed to check eligibility", sl.Err(err))
		status, resp := response.DomainError(err, "could not check eligibility")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("eligibility checked", slog.Bool("eligible", result.Eligible))
	render.JSON(w, r, response.OKWithData(result))
}
