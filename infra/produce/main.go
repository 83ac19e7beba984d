package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	NotificationService *NotificationService
	ReconcileService    *ReconcileService
}

var produceInstance *Produce

func InitProduce(channel *amqp.Channel) *Produce {
	if produceInstance != nil {
		return produceInstance
	}

	notificationService := InitNotificationService(channel)
	if notificationService == nil {
		panic("Failed to initialize Notification service")
	}

	reconcileService := InitReconcileService(channel)
	if reconcileService == nil {
		panic("Failed to initialize Reconcile service")
	}

	produceInstance = &Produce{
		NotificationService: notificationService,
		ReconcileService:    reconcileService,
	}

	return produceInstance
}

func GetProduce() *Produce {
	if produceInstance == nil {
		panic("Produce not initialized. Call InitProduce() first.")
	}
	return produceInstance
}
