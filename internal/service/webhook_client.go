package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier publishes record change events to an external endpoint.
// Delivery is best effort and never blocks or fails the API request.
type Notifier interface {
	Notify(ctx context.Context, event string, payload any)
}

// NopNotifier is used when no webhook URL is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, any) {}

// WebhookClient POSTs change events to the configured webhook URL.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookClient creates the webhook client.
func NewWebhookClient(url string, timeout time.Duration, logger *zap.Logger) *WebhookClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookClient{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

type webhookEvent struct {
	Event  string `json:"event"`
	SentAt string `json:"sent_at"`
	Data   any    `json:"data"`
}

// Notify delivers the event asynchronously. Failures are logged only.
func (c *WebhookClient) Notify(_ context.Context, event string, payload any) {
	body := webhookEvent{
		Event:  event,
		SentAt: time.Now().UTC().Format(time.RFC3339),
		Data:   payload,
	}

	go func() {
		resp, err := c.httpClient.R().SetBody(body).Post(c.url)
		if err != nil {
			c.logger.Warn("Webhook delivery failed",
				zap.String("event", event),
				zap.Error(err),
			)
			return
		}
		if resp.IsError() {
			c.logger.Warn("Webhook endpoint returned error",
				zap.String("event", event),
				zap.Int("status_code", resp.StatusCode()),
			)
		}
	}()
}
