package models

import "time"

// Статусы отработки. scheduled — единственный нетерминальный статус,
// переход из него происходит только при отметке посещаемости целевой тренировки.
const (
	RecoveryScheduled = "scheduled"
	RecoveryCompleted = "completed"
	RecoveryMissed    = "missed"
)

// MaxRecoveriesPerMonth — лимит незавершённых неудачей отработок на календарный месяц.
const MaxRecoveriesPerMonth = 2

// Recovery — запланированное посещение чужой тренировки взамен пропущенной.
// Создаётся атомарно с резервированием места в целевой тренировке.
type Recovery struct {
	ID                string    // Идентификатор отработки
	MemberUID         string    // Участник
	OriginalSessionID string    // Пропущенная тренировка
	RecoverySessionID string    // Целевая тренировка
	RecoveryDate      time.Time // Дата целевой тренировки
	TemporaryGroupID  string    // Группа целевой тренировки
	Status            string    // scheduled | completed | missed
	ScheduledAt       time.Time // Когда отработка была запланирована
}

// RecoveryEligibility — результат проверки права на запись отработки.
type RecoveryEligibility struct {
	Eligible            bool   `json:"eligible"`
	RemainingRecoveries int    `json:"remaining_recoveries"`
	Reason              string `json:"reason,omitempty"`
}

// DummyScheduleRecovery — JSON-запрос на запись отработки.
type DummyScheduleRecovery struct {
	OriginalSessionID string `json:"original_session_id" validate:"required,uuid"` // Пропущенная тренировка
	RecoverySessionID string `json:"recovery_session_id" validate:"required,uuid"` // Целевая тренировка
}
