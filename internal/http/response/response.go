// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "datetime=02-01-2006":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only date in format 02-01-2006", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has unsupported value", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// StatusForError сопоставляет доменной ошибке HTTP-статус.
// Неизвестные ошибки получают 500 и не раскрывают внутренних деталей.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrMemberNotFound),
		errors.Is(err, models.ErrGroupNotFound),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrAbsenceNotFound),
		errors.Is(err, models.ErrNoSubscription):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument),
		errors.Is(err, models.ErrInvalidSubscriptionType):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrSubscriptionInactive),
		errors.Is(err, models.ErrNoPendingAbsence),
		errors.Is(err, models.ErrNoRecoveryScheduled),
		errors.Is(err, models.ErrQuotaExceeded),
		errors.Is(err, models.ErrInvalidSession),
		errors.Is(err, models.ErrSessionFull),
		errors.Is(err, models.ErrFutureSession):
		return http.StatusConflict
	case errors.Is(err, models.ErrTxConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainError формирует пару (HTTP-статус, тело ошибки) для доменной ошибки.
// Для внутренних ошибок наружу уходит нейтральное сообщение fallback.
func DomainError(err error, fallback string) (int, ErrorResponse) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		return status, Error(fallback)
	}
	return status, Error(trimOp(err.Error()))
}

// trimOp срезает служебные префиксы вида "storage.Op: " из текста ошибки.
func trimOp(msg string) string {
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		tail := msg[idx+2:]
		if tail != "" {
			return tail
		}
	}
	return msg
}
