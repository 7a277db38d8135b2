package models

import "time"

// Статусы пропуска. Жизненный цикл пропуска заканчивается, когда связанная
// отработка достигает терминального статуса.
const (
	AbsencePendingRecovery   = "pending_recovery"
	AbsenceScheduledRecovery = "scheduled_recovery"
)

// Absence — заявленный участником пропуск будущей тренировки своей группы.
type Absence struct {
	ID        string    // Идентификатор пропуска
	MemberUID string    // Участник
	SessionID string    // Пропущенная тренировка
	Date      time.Time // Дата пропущенной тренировки
	Reason    string    // Причина, опционально
	Status    string    // pending_recovery | scheduled_recovery
	CreatedAt time.Time // Когда пропуск был заявлен
}

// DummyRecordAbsence — JSON-запрос на регистрацию пропуска.
type DummyRecordAbsence struct {
	SessionID string `json:"session_id" validate:"required,uuid"` // Тренировка, которая будет пропущена
	Reason    string `json:"reason" validate:"max=500"`           // Причина, опционально
}
