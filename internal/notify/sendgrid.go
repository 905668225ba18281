package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"oxigo-server/internal/logging"
)

// SendGridClient posts rendered e-mails to the SendGrid v3 mail/send API.
type SendGridClient struct {
	apiKey string
	url    string
	from   string
	http   *http.Client
	log    logging.Logger
}

func NewSendGridClient(apiKey, url, from string, log logging.Logger) *SendGridClient {
	return &SendGridClient{
		apiKey: apiKey,
		url:    url,
		from:   from,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgPersonalization struct {
	To      []sgAddress `json:"to"`
	Subject string      `json:"subject"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Content          []sgContent         `json:"content"`
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) bool {
	if err := c.send(ctx, msg); err != nil {
		c.log.Error(ctx, "sendgrid delivery failed", "kind", msg.Kind, "error", err)
		return false
	}
	c.log.Info(ctx, "e-mail sent", "kind", msg.Kind, "key", msg.Key())
	return true
}

func (c *SendGridClient) send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY missing")
	}

	html, err := RenderHTML(msg)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	body, err := json.Marshal(sgPayload{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: msg.To}}, Subject: msg.Subject}},
		From:             sgAddress{Email: c.from},
		Content:          []sgContent{{Type: "text/html", Value: html}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
