package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PublishMessage сериализует payload в JSON и публикует его в обменник
// с указанным ключом маршрутизации. Сообщения помечаются как persistent,
// чтобы напоминания об абонементах и отработках переживали рестарт брокера.
func PublishMessage(ch *amqp.Channel, exchange, routingKey string, payload any) error {
	const op = "rabbitmq.PublishMessage"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
