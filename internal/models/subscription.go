package models

import "time"

// Типы абонементов.
const (
	SubscriptionBasic     = "basic"
	SubscriptionFitness   = "fitness"
	SubscriptionNutrition = "nutrition"
	SubscriptionComplete  = "complete"
)

// Статусы абонемента.
const (
	SubscriptionStatusActive         = "active"
	SubscriptionStatusPendingRenewal = "pending_renewal"
	SubscriptionStatusExpired        = "expired"
)

// Статусы платежа в истории.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// IsValidSubscriptionType проверяет, что тип абонемента известен системе.
func IsValidSubscriptionType(t string) bool {
	switch t {
	case SubscriptionBasic, SubscriptionFitness, SubscriptionNutrition, SubscriptionComplete:
		return true
	}
	return false
}

// Subscription представляет абонемент участника.
// Инвариант: status=active подразумевает, что EndDate была не раньше "сейчас"
// в момент последнего перехода; ежедневная выметающая задача переводит
// просроченные абонементы в expired.
type Subscription struct {
	MemberUID string    // Владелец абонемента
	Type      string    // basic | fitness | nutrition | complete
	Status    string    // active | pending_renewal | expired
	StartDate time.Time // Начало действия
	EndDate   time.Time // Конец действия
	TotalDue  float64   // Задолженность, пересчитывается CalculateTotalDue
}

// PaymentRecord — запись в истории платежей, только добавляется.
type PaymentRecord struct {
	ID          int       // Идентификатор записи
	MemberUID   string    // Участник
	Date        time.Time // Дата платежа или попытки
	Amount      float64   // Сумма, 0 если не задана админом
	Status      string    // paid | unpaid
	ConfirmedBy string    // Кто подтвердил платёж
}

// SubscriptionInfo — абонемент вместе с вычисленными правами, отдаётся наружу.
type SubscriptionInfo struct {
	Subscription Subscription    `json:"subscription"`
	Permissions  Permissions     `json:"permissions"`
	Payments     []PaymentRecord `json:"payments,omitempty"`
}

// ExpiringSubscription — активный абонемент, истекающий в ближайшие дни.
type ExpiringSubscription struct {
	MemberUID       string    `json:"member_uid"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Type            string    `json:"type"`
	EndDate         time.Time `json:"end_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
}

// DummyUpdateSubscription используется для приёма данных из JSON-запроса
// на создание или обновление абонемента. Даты приходят строками в формате
// 02-01-2006 и парсятся вручную.
type DummyUpdateSubscription struct {
	Type      string  `json:"type" validate:"required"`       // Тип абонемента
	StartDate string  `json:"start_date" validate:"required"` // Дата начала, 02-01-2006
	EndDate   string  `json:"end_date" validate:"required"`   // Дата конца, 02-01-2006
	Price     float64 `json:"price" validate:"required,gt=0"` // Уплаченная сумма
}

// DummyRenewal — JSON-запрос на продление абонемента.
type DummyRenewal struct {
	Paid bool `json:"paid"` // Оплачено ли продление
}
