package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.subscription_expiry", RoutingKey: "subscription_expiry"},
		{QueueName: "notifications.recovery_scheduled", RoutingKey: "recovery_scheduled"},
	}
}
