// Package schedule реализует HTTP-обработчик записи на отработку пропуска.
//
// Handler принимает JSON-запрос с пропущенной и целевой тренировками,
// валидирует его и вызывает бизнес-логику бронирования. Все эффекты
// бронирования применяются атомарно на уровне сервиса.
package schedule

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Handler управляет HTTP-запросами на запись отработки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики бронирования отработки.
type Service interface {
	ScheduleRecovery(ctx context.Context, memberUID, originalSessionID, recoverySessionID string) (*models.Recovery, error)
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
// @Summary Записаться на отработку
// @Description Бронирует место в тренировке чужой группы взамен пропущенной. Проверяет пропуск, месячную квоту, дату и вместимость целевой тренировки.
// @Tags Recoveries
// @Accept  json
// @Produce  json
// @Param request body models.DummyScheduleRecovery true "Пропущенная и целевая тренировки"
// @Success 200 {object} map[string]any "Отработка запланирована"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Нет пропуска, исчерпана квота, тренировка прошла или заполнена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /recoveries [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recovery.schedule"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyScheduleRecovery
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

	memberUID, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || memberUID == "" {
		log.Error("member uid not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	rec, err := h.service.ScheduleRecovery(r.Context(), memberUID, req.OriginalSessionID, req.RecoverySessionID)
	if err != nil {
		log.Error("failed to schedule recovery", sl.Err(err))
		status, resp := response.DomainError(err, "could not schedule recovery")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("recovery scheduled", slog.String("recovery_id", rec.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"recovery_id":         rec.ID,
		"recovery_session_id": rec.RecoverySessionID,
		"recovery_date":       rec.RecoveryDate,
		"status":              rec.Status,
	}))
}
