package models

import "time"

// Статусы посещаемости.
const (
	AttendancePresent    = "present"
	AttendanceAbsent     = "absent"
	AttendanceLate       = "late"
	AttendanceExcused    = "excused"
	AttendanceRecovering = "recovering"
)

// IsValidMarkStatus проверяет статус, допустимый при ручной отметке посещаемости.
// recovering выставляется только планировщиком отработок.
func IsValidMarkStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Session — экземпляр занятия группы в конкретную дату.
type Session struct {
	ID        string    // Идентификатор тренировки
	GroupID   string    // Группа, к которой относится занятие
	Date      time.Time // Дата и время начала
	StartTime string    // Время начала, HH:MM
	EndTime   string    // Время конца, HH:MM
}

// TemporaryMember — участник, присутствующий на тренировке только
// в рамках отработки пропуска в своей группе.
type TemporaryMember struct {
	MemberUID       string `json:"member_uid"`
	OriginalGroupID string `json:"original_group_id"`
}

// AttendanceEntry — строка списка посещаемости тренировки.
type AttendanceEntry struct {
	MemberUID string `json:"member_uid"`
	Status    string `json:"status"`
}

// Roster — собранный список посещаемости тренировки.
type Roster struct {
	SessionID  string            `json:"session_id"`
	GroupID    string            `json:"group_id"`
	Date       time.Time         `json:"date"`
	Attendance map[string]string `json:"attendance"` // member_uid -> статус
}

// RecoverySlot — тренировка, доступная для записи на отработку.
type RecoverySlot struct {
	SessionID      string    `json:"session_id"`
	GroupID        string    `json:"group_id"`
	GroupName      string    `json:"group_name"`
	Date           time.Time `json:"date"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	AvailableSlots int       `json:"available_slots"`
}

// DummyMarkAttendance — JSON-запрос на отметку посещаемости тренировки.
type DummyMarkAttendance struct {
	Statuses map[string]string `json:"statuses" validate:"required,min=1"` // member_uid -> статус
}
