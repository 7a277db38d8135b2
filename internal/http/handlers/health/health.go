// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-scheduler/internal/http/response"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
)

// Pinger описывает проверку доступности хранилища.
type Pinger interface {
	Ping() error
}

// Handler управляет HTTP-запросами проверки готовности.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создает новый Handler с переданными логгером и хранилищем.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности сервиса
// @Description Возвращает OK, если сервис и база данных доступны.
// @Tags Service
// @Produce  json
// @Success 200 {object} map[string]any "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		h.log.Error("database ping failed", sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{"healthy": true}))
}
