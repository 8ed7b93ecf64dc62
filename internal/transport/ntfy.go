package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/darshan-rambhia/herald/internal/model"
)

// NtfyPusher delivers push notifications through an ntfy server. Each user
// is addressed by the topic <prefix><user id>.
type NtfyPusher struct {
	url         string
	topicPrefix string
	token       string
	title       string
	client      *http.Client
}

// NewNtfy creates a pusher for the ntfy server at url.
func NewNtfy(url, topicPrefix, token string) *NtfyPusher {
	return &NtfyPusher{
		url:         strings.TrimRight(url, "/"),
		topicPrefix: topicPrefix,
		token:       token,
		title:       "Herald",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SendPush publishes req.Message to the user's topic. A 4xx response means
// ntfy refused the message and is reported as OutcomeFailure; network
// errors and 5xx responses are returned as errors.
func (n *NtfyPusher) SendPush(ctx context.Context, req model.PushRequest) (model.Outcome, error) {
	if req.UserID == "" {
		return model.OutcomeFailure, nil
	}
	endpoint := fmt.Sprintf("%s/%s%s", n.url, n.topicPrefix, req.UserID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(req.Message))
	if err != nil {
		return "", fmt.Errorf("ntfy: build request: %w", err)
	}
	httpReq.Header.Set("Title", n.title)
	httpReq.Header.Set("Tags", "bell")
	if n.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ntfy: send: %w", err)
	}
	defer resp.Body.Close()

	return outcomeForStatus("ntfy", resp.StatusCode)
}
