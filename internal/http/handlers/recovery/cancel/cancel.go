// Package cancel реализует HTTP-обработчик отмены запланированной отработки.
package cancel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
)

// Handler управляет HTTP-запросами на отмену отработки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отмены отработки.
type Service interface {
	CancelRecovery(ctx context.Context, memberUID, absenceID string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отменить отработку
// @Description Отменяет запланированную отработку, возвращает пропуск в pending_recovery и освобождает место в целевой тренировке.
// @Tags Recoveries
// @Produce  json
// @Param absenceID path string true "Идентификатор пропуска"
// @Success 200 {object} map[string]any "Отработка отменена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "По пропуску не запланировано отработки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /recoveries/{absenceID} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recovery.cancel"
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

	absenceID := chi.URLParam(r, "absenceID")
	if absenceID == "" {
		log.Error("absence id is empty")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("absence id is required"))
		return
	}

	if err := h.service.CancelRecovery(r.Context(), memberUID, absenceID); err != nil {
		log.Error("failed to cancel recovery", sl.Err(err))
		status, resp := response.DomainError(err, "could not cancel recovery")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("recovery cancelled", slog.String("absence_id", absenceID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"absence_id": absenceID,
	}))
}
