// Package sl содержит мелкие помощники для структурированного логирования через slog.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr с ключом "error",
// чтобы во всех сервисах ошибки логировались одинаково:
//
//	log.Error("failed to schedule recovery", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}
