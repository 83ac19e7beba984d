package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DriveExchange = "drive.exchange"

	// ReconcileObjectQueue receives catalog rows whose blob write failed
	// ("phantom objects"); the consumer verifies and sweeps them.
	ReconcileObjectQueue      = "object.reconcile"
	ReconcileObjectRoutingKey = "object.reconcile"
)

// ReconcileObjectMessage marks a catalog row that may have no backing blob.
type ReconcileObjectMessage struct {
	ObjectKey string `json:"object_key"`
	OwnerID   string `json:"owner_id"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// ReconcileService publishes phantom-object candidates for the sweep worker.
type ReconcileService struct {
	channel *amqp.Channel
}

func InitReconcileService(channel *amqp.Channel) *ReconcileService {
	err := channel.ExchangeDeclare(
		DriveExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Drive exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ReconcileObjectQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Reconcile queue: " + err.Error())
	}

	err = channel.QueueBind(
		ReconcileObjectQueue,
		ReconcileObjectRoutingKey,
		DriveExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Reconcile queue: " + err.Error())
	}

	return &ReconcileService{
		channel: channel,
	}
}

func (s *ReconcileService) PublishReconcileObject(ctx context.Context, msg ReconcileObjectMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		DriveExchange,
		ReconcileObjectRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
