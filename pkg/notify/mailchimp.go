package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MailchimpNotifier subscribes a signup's email to a Mailchimp audience.
type MailchimpNotifier struct {
	apiKey  string
	listID  string
	baseURL string
	client  *http.Client
}

// NewMailchimpNotifier builds a notifier for the given audience. serverPrefix
// is the Mailchimp datacenter ("us1", "us2", ...).
func NewMailchimpNotifier(apiKey, listID, serverPrefix string, client *http.Client) *MailchimpNotifier {
	if serverPrefix == "" {
		serverPrefix = "us1"
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MailchimpNotifier{
		apiKey:  apiKey,
		listID:  listID,
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", serverPrefix),
		client:  client,
	}
}

func (m *MailchimpNotifier) Name() string {
	return "mailchimp"
}

type mailchimpMember struct {
	EmailAddress string            `json:"email_address"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields"`
	Tags         []string          `json:"tags"`
}

type mailchimpError struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (m *MailchimpNotifier) Notify(ctx context.Context, signup *Signup) error {
	payload := mailchimpMember{
		EmailAddress: signup.Email,
		Status:       "subscribed",
		MergeFields: map[string]string{
			"ROLE":     signup.Role,
			"COMPANY":  signup.Company,
			"LISTINGS": signup.MonthlyListings,
		},
		Tags: []string{"waitlist", "vistaforge"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mailchimp: encode member: %w", err)
	}

	url := fmt.Sprintf("%s/lists/%s/members", m.baseURL, m.listID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailchimp: build request: %w", err)
	}
	req.SetBasicAuth("anystring", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailchimp: subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 {
		return nil
	}

	// A member that is already on the list is not a failure: the waitlist
	// uniqueness constraint has its own duplicates story and the list state
	// is what we wanted anyway.
	var apiErr mailchimpError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Title == "Member Exists" {
		return nil
	}

	return fmt.Errorf("mailchimp: subscribe returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
