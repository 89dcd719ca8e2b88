package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Nathankoth/waitlist-main-second/pkg/constants"
)

// SlackNotifier posts a signup summary to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

func (s *SlackNotifier) Notify(ctx context.Context, signup *Signup) error {
	msg := slackMessage{
		Text: "New Waitlist Signup!",
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: "New VistaForge Waitlist Signup"},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Email:*\n" + signup.Email},
					{Type: "mrkdwn", Text: "*Role:*\n" + orNotSpecified(signup.Role)},
					{Type: "mrkdwn", Text: "*Company:*\n" + orNotSpecified(signup.Company)},
					{Type: "mrkdwn", Text: "*Monthly Listings:*\n" + orNotSpecified(signup.MonthlyListings)},
					{Type: "mrkdwn", Text: "*How Heard:*\n" + orNotSpecified(signup.HowHeard)},
					{Type: "mrkdwn", Text: "*Timestamp:*\n" + signup.CreatedAt.UTC().Format(constants.RFC3339DateTimeFormat)},
				},
			},
		},
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// Include the status text so retryable failures (timeouts, 503s) are
		// recognizable by the retry policy.
		return fmt.Errorf("slack: webhook returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return nil
}

func orNotSpecified(v string) string {
	if v == "" {
		return "Not specified"
	}
	return v
}
