// Package roster реализует HTTP-обработчик генерации списка посещаемости.
package roster

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на генерацию списка посещаемости.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики генерации списка посещаемости.
type Service interface {
	GenerateAttendanceRoster(ctx context.Context, sessionID string) (*models.Roster, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список посещаемости тренировки
// @Description Собирает список посещаемости заново: участники группы с учётом заявленных пропусков плюс временные участники со статусом recovering.
// @Tags Attendance
// @Produce  json
// @Param sessionID path string true "Идентификатор тренировки"
// @Success 200 {object} map[string]any "Список посещаемости"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /sessions/{sessionID}/roster [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.roster"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := chi.URLParam(r, "sessionID")
	result, err := h.service.GenerateAttendanceRoster(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to generate roster", sl.Err(err))
		status, resp := response.DomainError(err, "could not generate roster")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("roster generated",
		slog.String("session_id", sessionID),
		slog.Int("entries", len(result.Attendance)))
	render.JSON(w, r, response.OKWithData(result))
}
