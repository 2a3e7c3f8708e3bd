package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"spotfinder/models"
)

type Slack struct {
	webhookURL string
	client     *http.Client
}

func NewSlack(webhookURL string, client *http.Client) *Slack {
	if client == nil {
		client = http.DefaultClient
	}
	return &Slack{webhookURL: webhookURL, client: client}
}

// Deliver posts the notification to the incoming webhook.
func (s *Slack) Deliver(ctx context.Context, event models.NotificationEvent) error {
	icon := "🔔"
	if event.Type == models.NotificationReward {
		icon = "🏆"
	}
	payload := map[string]string{
		"text": fmt.Sprintf("%s SpotFinder\n\nUser: %d\nType: %s\n\n%s", icon, event.UserID, event.Type, event.Message),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack: status %d", resp.StatusCode)
	}
	return nil
}
