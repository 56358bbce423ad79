package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"astro-readings/internal/model"
)

// DiscordSink posts a human-readable summary to a chat webhook. Paid events
// always alert; created events only when enabled.
type DiscordSink struct {
	httpClient      *http.Client
	webhookURL      string
	notifyOnCreated bool
}

func NewDiscordSink(webhookURL string, notifyOnCreated bool) *DiscordSink {
	return &DiscordSink{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		webhookURL:      webhookURL,
		notifyOnCreated: notifyOnCreated,
	}
}

func (s *DiscordSink) OrderCreated(ctx context.Context, order *model.Order, item *model.OrderItem) error {
	if !s.notifyOnCreated {
		return nil
	}
	e := eventFromOrder(EventCreated, order)
	msg := fmt.Sprintf("📩 New booking %s: %s (%s) by %s <%s>",
		e.OrderID, e.Reading, e.Mode, e.Name, e.Email)
	return s.post(ctx, msg)
}

func (s *DiscordSink) OrderPaid(ctx context.Context, order *model.Order, set *model.Settlement) error {
	e := eventFromSettlement(order, set)
	msg := fmt.Sprintf("💰 Order %s paid: %s %s for %s (%s) — %s <%s>",
		e.OrderID, e.Amount, e.Currency, e.Reading, e.Mode, e.Name, e.Email)
	return s.post(ctx, msg)
}

func (s *DiscordSink) post(ctx context.Context, content string) error {
	if s.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}
