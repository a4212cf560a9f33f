package jobqueue

import (
	"context"
	"fmt"

	"github.com/dztechshop/dzshop/app/models"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

// NotificationProcessor executes provider notification jobs by handing them
// to the payments notifier, which owns the bounded delivery retry loop.
func NotificationProcessor(notifier *payments.Notifier) Processor {
	return func(ctx context.Context, job *Job) error {
		payload, err := ProviderNotificationJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid notification payload: %w", err)
		}
		return notifier.Deliver(ctx, payload.WebhookURL, payload.Notification)
	}
}

// Dispatcher hands provider notifications to the queue so outbound delivery
// runs independently of the inbound webhook request. Implements
// payments.Dispatcher.
type Dispatcher struct {
	queue *Queue
}

// NewDispatcher creates a dispatcher over the given queue.
func NewDispatcher(queue *Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// DispatchNotification enqueues one notification delivery job.
func (d *Dispatcher) DispatchNotification(provider *models.Provider, payload payments.NotificationPayload) error {
	job := ProviderNotificationJobPayload{
		WebhookURL:   provider.WebhookURL,
		ProviderSlug: provider.Slug,
		Notification: payload,
	}
	_, err := d.queue.EnqueueJob(JobTypeProviderNotification, job.ToMap())
	return err
}
