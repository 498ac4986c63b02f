package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const resendBaseURL = "https://api.resend.com"

// ResendProvider sends through the Resend transactional email API.
type ResendProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewResendProvider(apiKey string) *ResendProvider {
	return &ResendProvider{
		apiKey:  apiKey,
		baseURL: resendBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// NewResendProviderWithBaseURL is used by tests to point the client at a
// local stub server.
func NewResendProviderWithBaseURL(apiKey, baseURL string) *ResendProvider {
	p := NewResendProvider(apiKey)
	p.baseURL = strings.TrimRight(baseURL, "/")
	return p
}

type resendSendRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Text    string            `json:"text,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Tags    []resendTag       `json:"tags,omitempty"`
}

type resendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resendSendResponse struct {
	ID string `json:"id"`
}

type resendErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type resendDomainList struct {
	Data []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"data"`
}

func (p *ResendProvider) Send(ctx context.Context, msg *Message) (string, error) {
	from := msg.FromEmail
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)
	}

	body := resendSendRequest{
		From:    from,
		To:      []string{msg.To},
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Tags: []resendTag{
			{Name: "track_opens", Value: boolTag(msg.TrackOpens)},
			{Name: "track_clicks", Value: boolTag(msg.TrackClicks)},
		},
	}

	var resp resendSendResponse
	if err := p.do(ctx, http.MethodPost, "/emails", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// DomainVerified looks the domain up in the account's domain list. Unknown
// domains are simply not verified; only transport failures are errors.
func (p *ResendProvider) DomainVerified(ctx context.Context, domain string) (bool, error) {
	var list resendDomainList
	if err := p.do(ctx, http.MethodGet, "/domains", nil, &list); err != nil {
		return false, err
	}
	for _, d := range list.Data {
		if strings.EqualFold(d.Name, domain) {
			return strings.EqualFold(d.Status, "verified"), nil
		}
	}
	return false, nil
}

func (p *ResendProvider) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr resendErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("provider error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("provider error (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding provider response: %w", err)
		}
	}
	return nil
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
