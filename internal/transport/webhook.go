package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/darshan-rambhia/herald/internal/model"
)

// WebhookSMS delivers text messages by posting JSON to an SMS gateway.
type WebhookSMS struct {
	url     string
	method  string
	headers map[string]string
	client  *http.Client
}

// NewWebhookSMS creates an SMS sender for the gateway at url. An empty
// method defaults to POST.
func NewWebhookSMS(url, method string, headers map[string]string) *WebhookSMS {
	if method == "" {
		method = http.MethodPost
	}
	return &WebhookSMS{
		url:     url,
		method:  method,
		headers: headers,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS posts req as JSON. 4xx responses are reported as OutcomeFailure.
func (w *WebhookSMS) SendSMS(ctx context.Context, req model.SMSRequest) (model.Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("sms webhook: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, w.method, w.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("sms webhook: build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sms webhook: send: %w", err)
	}
	defer resp.Body.Close()

	return outcomeForStatus("sms webhook", resp.StatusCode)
}
