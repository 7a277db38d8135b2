// Package month содержит вспомогательные функции для работы с календарными
// месяцами: окно текущего месяца для подсчёта квоты отработок и разница в днях
// для списка истекающих абонементов.
package month

import "time"

// Window возвращает границы календарного месяца, содержащего t:
// начало первого дня месяца включительно и начало следующего месяца исключительно.
// Границы считаются в локации t.
func Window(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// SameMonth сообщает, попадают ли обе даты в один календарный месяц.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DaysUntil считает количество дней от from до to с округлением вверх.
// Если to раньше from, возвращает 0.
func DaysUntil(from, to time.Time) int {
	diff := to.Sub(from)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
