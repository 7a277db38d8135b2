// Package record реализует HTTP-обработчик регистрации пропуска тренировки.
//
// Handler принимает JSON-запрос с тренировкой и причиной, валидирует его,
// извлекает идентификатор участника из контекста, вызывает бизнес-логику
// и возвращает созданную запись о пропуске в JSON-формате.
package record

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

// Handler управляет HTTP-запросами на регистрацию пропусков.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики пропусков и отработок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики регистрации пропуска.
type Service interface {
	RecordAbsence(ctx context.Context, memberUID string, req models.DummyRecordAbsence) (*models.Absence, error)
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
// @Summary Зарегистрировать пропуск тренировки
// @Description Регистрирует пропуск будущей тренировки своей группы и помечает участника absent в списке посещаемости.
// @Tags Absences
// @Accept  json
// @Produce  json
// @Param request body models.DummyRecordAbsence true "Данные пропуска"
// @Success 200 {object} map[string]any "Пропуск зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Тренировка уже прошла или пропуск уже заявлен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /absences [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.absence.record"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRecordAbsence
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

	absence, err := h.service.RecordAbsence(r.Context(), memberUID, req)
	if err != nil {
		log.Error("failed to record absence", sl.Err(err))
		status, resp := response.DomainError(err, "could not record absence")
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("absence recorded", slog.String("absence_id", absence.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"absence_id": absence.ID,
		"status":     absence.Status,
	}))
}
