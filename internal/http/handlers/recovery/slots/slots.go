// Package slots реализует HTTP-обработчик поиска тренировок для отработки.
package slots

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

const dateLayout = "02-01-2006"

// Handler управляет HTTP-запросами на поиск свободных тренировок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подбора тренировок для отработки.
type Service interface {
	ListAvailableRecoverySlots(ctx context.Context, memberUID string, from, to time.Time) ([]*models.RecoverySlot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Доступные тренировки для отработки
// @Description Возвращает тренировки чужих групп совпадающего уровня со свободными местами. Интервал по умолчанию — две недели от текущего момента.
// @Tags Recoveries
// @Produce  json
// @Param from query string false "Начало интервала, 02-01-2006"
// @Param to query string false "Конец интервала, 02-01-2006"
// @Success 200 {object} map[string]any "Список тренировок"
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /recoveries/slots [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recovery.slots"
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

	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(dateLayout, v)
		if err != nil {
			log.Error("failed to parse from date", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid from date, expected 02-01-2006"))
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(dateLayout, v)
		if err != nil {
			log.Error("failed to parse to date", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid to date, expected 02-01-2006"))
			return
		}
	}

	result, err := h.service.ListAvailableRecoverySlots(r.Context(), memberUID, from, to)
	if err != nil {
		log.Error("failed to list recovery slots", sl.Err(err))
		status, resp := response.DomainError(err, "could not list recovery slots")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("recovery slots listed", slog.Int("count", len(result)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"slots": result,
		"count": len(result),
	}))
}
