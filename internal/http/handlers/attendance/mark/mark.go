// Package mark реализует HTTP-обработчик отметки посещаемости тренировки.
//
// Помимо сохранения статусов отметка разрешает исходы отработок временных
// участников, поэтому успешный ответ означает, что все связанные отработки
// переведены в терминальный статус.
package mark

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на отметку посещаемости.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отметки посещаемости.
type Service interface {
	MarkAttendance(ctx context.Context, sessionID string, statuses map[string]string) error
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
// @Summary Отметить посещаемость тренировки
// @Description Применяет статусы посещаемости к прошедшей тренировке и разрешает исходы отработок временных участников.
// @Tags Attendance
// @Accept  json
// @Produce  json
// @Param sessionID path string true "Идентификатор тренировки"
// @Param request body models.DummyMarkAttendance true "Статусы участников"
// @Success 200 {object} map[string]any "Посещаемость отмечена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Тренировка не найдена"
// @Failure 409 {object} response.ErrorResponse "Тренировка ещё не началась"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /sessions/{sessionID}/attendance [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.mark"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMarkAttendance
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Int("entries", len(req.Statuses)))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.MarkAttendance(r.Context(), sessionID, req.Statuses); err != nil {
		log.Error("failed to mark attendance", sl.Err(err))
		status, resp := response.DomainError(err, "could not mark attendance")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("attendance marked",
		slog.String("session_id", sessionID),
		slog.Int("entries", len(req.Statuses)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session_id": sessionID,
		"marked":     len(req.Statuses),
	}))
}
