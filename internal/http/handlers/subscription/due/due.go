// Package due реализует HTTP-обработчик пересчёта задолженности участника.
package due

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
)

// Handler управляет HTTP-запросами на пересчёт задолженности.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики расчёта задолженности.
type Service interface {
	CalculateTotalDue(ctx context.Context, memberUID string) (float64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Задолженность участника
// @Description Пересчитывает и возвращает текущую задолженность участника по абонементу и неоплаченным записям истории.
// @Tags Subscriptions
// @Produce  json
// @Param memberID path string true "Идентификатор участника"
// @Success 200 {object} map[string]any "Сумма задолженности"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Абонемент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /members/{memberID}/due [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.due"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID := chi.URLParam(r, "memberID")
	totalDue, err := h.service.CalculateTotalDue(r.Context(), memberID)
	if err != nil {
		log.Error("failed to calculate total due", sl.Err(err))
		status, resp := response.DomainError(err, "could not calculate total due")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("total due calculated",
		slog.String("member_uid", memberID),
		slog.Float64("total_due", totalDue))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"member_uid": memberID,
		"total_due":  totalDue,
	}))
}
