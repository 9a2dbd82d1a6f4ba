package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clubops/session-system/models"
)

const defaultSendTimeout = 10 * time.Second

// WebhookSender отправляет payload POST-запросом на endpoint подписки.
// Ключи подписки передаются заголовками, шифрованием занимается принимающая
// сторона.
type WebhookSender struct {
	client *http.Client
}

func NewWebhookSender(timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &WebhookSender{
		client: &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSender) Send(ctx context.Context, sub models.Subscription, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Push-P256dh", sub.P256dh)
	req.Header.Set("X-Push-Auth", sub.Auth)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver push to subscription %d: %w", sub.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push endpoint for subscription %d returned status %d", sub.ID, resp.StatusCode)
	}
	return nil
}
