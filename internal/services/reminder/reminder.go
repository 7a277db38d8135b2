// Package services содержит публикацию напоминаний для внешнего
// диспетчера уведомлений через RabbitMQ. Доставкой писем и push-сообщений
// занимается отдельный сервис-потребитель очередей.
package services

import (
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-scheduler/internal/lib/rabbitmq"
)

// reminderExchange — exchange, в который публикуются все напоминания.
const reminderExchange = "notifications"

// ReminderMessage — полезная нагрузка напоминания.
type ReminderMessage struct {
	MemberUID string    `json:"member_uid"`
	Kind      string    `json:"kind"`
	FireAt    time.Time `json:"fire_at"`
	Payload   any       `json:"payload,omitempty"`
}

// ReminderPublisher публикует напоминания в RabbitMQ.
// Вид напоминания служит routing key и определяет очередь-получатель.
type ReminderPublisher struct {
	ch *amqp.Channel
}

// NewReminderPublisher создает новый экземпляр ReminderPublisher.
func NewReminderPublisher(ch *amqp.Channel) *ReminderPublisher {
	return &ReminderPublisher{ch: ch}
}

// ScheduleReminder публикует напоминание участнику с временем срабатывания fireAt.
func (p *ReminderPublisher) ScheduleReminder(memberUID, kind string, fireAt time.Time, payload any) error {
	msg := ReminderMessage{
		MemberUID: memberUID,
		Kind:      kind,
		FireAt:    fireAt,
		Payload:   payload,
	}
	return rabbitmq.PublishMessage(p.ch, reminderExchange, kind, msg)
}
