// Package history реализует HTTP-обработчик истории пропусков участника.
package history

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

// dateLayout — формат дат в query-параметрах.
const dateLayout = "02-01-2006"

// Handler управляет HTTP-запросами на чтение истории пропусков.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения истории пропусков.
type Service interface {
	ListAbsenceHistory(ctx context.Context, memberUID string, from, to time.Time, status string) ([]*models.Absence, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История пропусков участника
// @Description Возвращает пропуски текущего участника, новые первыми. Поддерживает фильтры по интервалу дат и статусу.
// @Tags Absences
// @Produce  json
// @Param from query string false "Начало интервала, 02-01-2006"
// @Param to query string false "Конец интервала, 02-01-2006"
// @Param status query string false "Статус пропуска"
// @Success 200 {object} map[string]any "Список пропусков"
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /absences [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.absence.history"
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
	status := r.URL.Query().Get("status")

	absences, err := h.service.ListAbsenceHistory(r.Context(), memberUID, from, to, status)
	if err != nil {
		log.Error("failed to list absences", sl.Err(err))
		respStatus, resp := response.DomainError(err, "could not list absences")
		render.Status(r, respStatus)
		render.JSON(w, r, resp)
		return
	}

	log.Info("absences listed", slog.Int("count", len(absences)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"absences": absences,
		"count":    len(absences),
	}))
}
