// Package models содержит ошибки доменного уровня.
// Сервисы возвращают их напрямую или обёрнутыми через fmt.Errorf("%s: %w"),
// HTTP-слой сопоставляет их со статусами через errors.Is.
package models

import "errors"

var (
	// ErrMemberNotFound — участник с указанным ID не найден.
	ErrMemberNotFound = errors.New("member not found")
	// ErrGroupNotFound — группа с указанным ID не найдена.
	ErrGroupNotFound = errors.New("group not found")
	// ErrSessionNotFound — тренировка с указанным ID не найдена.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAbsenceNotFound — запись о пропуске не найдена.
	ErrAbsenceNotFound = errors.New("absence not found")

	// ErrInvalidState — операция недопустима в текущем состоянии сущности,
	// например отметка пропуска на уже прошедшую тренировку.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrSubscriptionInactive — абонемент участника не активен.
	ErrSubscriptionInactive = errors.New("subscription is not active")
	// ErrPermissionDenied — тип абонемента не даёт права на операцию.
	ErrPermissionDenied = errors.New("subscription type does not permit operation")
	// ErrNoSubscription — у участника нет оформленного абонемента.
	ErrNoSubscription = errors.New("member has no subscription")
	// ErrInvalidSubscriptionType — неизвестный тип абонемента.
	ErrInvalidSubscriptionType = errors.New("invalid subscription type")

	// ErrNoPendingAbsence — для исходной тренировки нет пропуска в статусе pending_recovery.
	ErrNoPendingAbsence = errors.New("no pending absence for original session")
	// ErrNoRecoveryScheduled — по пропуску не запланировано отработки.
	ErrNoRecoveryScheduled = errors.New("absence has no scheduled recovery")
	// ErrQuotaExceeded — исчерпан месячный лимит отработок.
	ErrQuotaExceeded = errors.New("monthly recovery quota exceeded")
	// ErrInvalidSession — тренировка для отработки не существует или уже прошла.
	ErrInvalidSession = errors.New("recovery session does not exist or is in the past")
	// ErrSessionFull — в тренировке не осталось свободных мест.
	ErrSessionFull = errors.New("session has no remaining capacity")
	// ErrFutureSession — посещаемость нельзя отметить до начала тренировки.
	ErrFutureSession = errors.New("cannot mark attendance for a future session")

	// ErrInvalidArgument — некорректные входные данные.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTxConflict — транзакция не прошла после всех повторов из-за конкурентных изменений.
	ErrTxConflict = errors.New("transaction conflict, retries exhausted")
)
