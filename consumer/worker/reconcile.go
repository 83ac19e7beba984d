package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-drive-service/infra"
	"github.com/tnqbao/gau-drive-service/infra/produce"
	"github.com/tnqbao/gau-drive-service/repository"
)

// ReconcileConsumer sweeps phantom objects: catalog rows whose blob write
// failed during upload. The row is removed only after the store confirms the
// blob is absent.
type ReconcileConsumer struct {
	channel    *amqp.Channel
	infra      *infra.Infra
	repository *repository.Repository
}

func NewReconcileConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository) *ReconcileConsumer {
	return &ReconcileConsumer{
		channel:    channel,
		infra:      infra,
		repository: repo,
	}
}

func (c *ReconcileConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.ReconcileObjectQueue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register reconcile consumer: %w", err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Started listening on queue: %s", produce.ReconcileObjectQueue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Shutting down...")
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Reconcile Consumer] Channel closed")
					return
				}
				c.handleReconcile(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *ReconcileConsumer) handleReconcile(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ReconcileObjectMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Failed to unmarshal message")
		_ = msg.Nack(false, false)
		return
	}

	objectKey, err := uuid.Parse(payload.ObjectKey)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Invalid object key: %s", payload.ObjectKey)
		_ = msg.Nack(false, false)
		return
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Checking object %s (%s)", objectKey, payload.Reason)

	// The HTTP request context is long gone; storage work runs on its own.
	bgCtx := context.Background()

	exists, err := c.infra.Minio.StatObject(bgCtx, objectKey.String())
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Failed to stat object %s", objectKey)
		_ = msg.Nack(false, true) // Requeue
		return
	}

	if exists {
		// The blob landed after all; the catalog row is consistent.
		c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Blob exists for %s, nothing to do", objectKey)
		_ = msg.Ack(false)
		return
	}

	if err := c.repository.ObjectRepo.DeleteByKey(objectKey); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Reconcile Consumer] Failed to remove phantom row %s", objectKey)
		_ = msg.Nack(false, true) // Requeue
		return
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Reconcile Consumer] Removed phantom object %s", objectKey)
	_ = msg.Ack(false)
}
