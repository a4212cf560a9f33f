package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

const (
	notifyMaxAttempts = 5
	notifyBackoffBase = 1 * time.Second

	webhookHeaderName  = "X-DZTech-Webhook"
	webhookHeaderValue = "payment-notification"
)

// Notifier pushes order-status notifications to provider webhook endpoints
// with bounded exponential backoff. Delivery is at-least-once: the receiving
// provider owns deduplication of repeated notifications.
type Notifier struct {
	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewNotifier creates a notifier using real wall-clock backoff.
func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sleep:      time.Sleep,
	}
}

// Deliver POSTs the payload to webhookURL, retrying up to five times. The
// first attempt is immediate; later attempts wait 1s, 2s, 4s, 8s. A 2xx
// response ends the loop; anything else is logged and retried. Exhaustion
// returns a terminal error for the dispatcher to log; nothing propagates
// back to the inbound webhook path.
func (n *Notifier) Deliver(ctx context.Context, webhookURL string, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notification payload for order %s: %w", payload.OrderID, err)
	}

	for attempt := 1; attempt <= notifyMaxAttempts; attempt++ {
		if attempt > 1 {
			n.sleep(notifyBackoffBase << (attempt - 2))
		}

		status, err := n.post(ctx, webhookURL, body)
		if err != nil {
			log.Warnf("[Notifier] attempt %d/%d to %s failed: %v",
				attempt, notifyMaxAttempts, webhookURL, err)
			continue
		}
		if status >= 200 && status < 300 {
			log.Infof("[Notifier] delivered %s for order %s to %s (attempt %d)",
				payload.Event, payload.OrderID, webhookURL, attempt)
			return nil
		}
		log.Warnf("[Notifier] attempt %d/%d to %s returned status %d",
			attempt, notifyMaxAttempts, webhookURL, status)
	}

	return fmt.Errorf("notification %s for order %s to %s failed after %d attempts",
		payload.Event, payload.OrderID, webhookURL, notifyMaxAttempts)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(webhookHeaderName, webhookHeaderValue)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, nil
}
