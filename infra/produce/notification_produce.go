package produce

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EmailExchange               = "email_exchange"
	EmailNotificationQueue      = "email.notification"
	EmailNotificationRoutingKey = "email.notification"
)

type EmailMessage struct {
	Type          string `json:"type"`
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipientName,omitempty"`
	Content       string `json:"content"`
	ActionUrl     string `json:"actionUrl,omitempty"`
}

// NotificationService publishes share notifications to the email worker.
// Delivery is fire-and-forget from the request's point of view.
type NotificationService struct {
	channel *amqp.Channel
}

func InitNotificationService(channel *amqp.Channel) *NotificationService {
	err := channel.ExchangeDeclare(
		EmailExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Email exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		EmailNotificationQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Email notification queue: " + err.Error())
	}

	err = channel.QueueBind(
		EmailNotificationQueue,
		EmailNotificationRoutingKey,
		EmailExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Email notification queue: " + err.Error())
	}

	return &NotificationService{
		channel: channel,
	}
}

// SendObjectSharedNotification notifies a user that an object was shared with
// them.
func (s *NotificationService) SendObjectSharedNotification(ctx context.Context, email, recipientName, objectName, actionUrl string) error {
	message := EmailMessage{
		Type:          "notification",
		Recipient:     email,
		RecipientName: recipientName,
		Content:       fmt.Sprintf("The file '%s' has been shared with you.", objectName),
		ActionUrl:     actionUrl,
	}

	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	err = s.channel.PublishWithContext(
		ctx,
		EmailExchange,
		EmailNotificationRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish email message: %w", err)
	}

	return nil
}
