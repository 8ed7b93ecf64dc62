package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darshan-rambhia/herald/internal/config"
	"github.com/darshan-rambhia/herald/internal/model"
	"github.com/darshan-rambhia/herald/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Timeout:     config.Duration{Duration: time.Second},
		Concurrency: 2,
		Email: &config.EmailConfig{
			Address: "a@b.com",
			Subject: "S",
			SMTP:    config.SMTPConfig{Host: "127.0.0.1", Port: 25, From: "herald@example.com"},
		},
		SMS: &config.SMSConfig{
			PhoneNumber: "+00500500500",
			Gateway:     config.GatewayConfig{URL: "http://127.0.0.1/sms"},
		},
		Push: &config.PushConfig{
			UserID: "1a",
			Ntfy:   config.NtfyConfig{URL: "http://127.0.0.1", TopicPrefix: "herald-"},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildBindsConfiguredProviders(t *testing.T) {
	var gotEmail model.EmailRequest
	var gotSMS model.SMSRequest
	var gotPush model.PushRequest
	senders := Senders{
		Email: func(_ context.Context, r model.EmailRequest) (model.Outcome, error) {
			gotEmail = r
			return model.OutcomeSuccess, nil
		},
		SMS: func(_ context.Context, r model.SMSRequest) (model.Outcome, error) {
			gotSMS = r
			return model.OutcomeSuccess, nil
		},
		Push: func(_ context.Context, r model.PushRequest) (model.Outcome, error) {
			gotPush = r
			return model.OutcomeSuccess, nil
		},
	}

	n := notify.New(Build(testConfig(), senders))
	ctx := context.Background()

	for _, p := range model.Providers() {
		out, err := n.Notify(ctx, model.Request{Provider: p, Message: "hello"})
		require.NoError(t, err, p)
		assert.Equal(t, model.OutcomeSuccess, out)
	}
	assert.Equal(t, model.EmailRequest{Address: "a@b.com", Subject: "S", Message: "hello"}, gotEmail)
	assert.Equal(t, model.SMSRequest{PhoneNumber: "+00500500500", Message: "hello"}, gotSMS)
	assert.Equal(t, model.PushRequest{UserID: "1a", Message: "hello"}, gotPush)
}

func TestBuildLeavesMissingSectionsUnbound(t *testing.T) {
	cfg := testConfig()
	cfg.SMS = nil
	senders := Senders{
		Email: func(context.Context, model.EmailRequest) (model.Outcome, error) { return model.OutcomeSuccess, nil },
		SMS:   func(context.Context, model.SMSRequest) (model.Outcome, error) { return model.OutcomeSuccess, nil },
	}

	strategies := Build(cfg, senders)
	assert.Len(t, strategies, 3)
	assert.NotNil(t, strategies[model.ProviderEmail])
	assert.Nil(t, strategies[model.ProviderSMS])
	assert.Nil(t, strategies[model.ProviderPush], "push has config but no sender")

	_, err := notify.New(strategies).Notify(context.Background(), model.Request{Provider: model.ProviderSMS, Message: "hi"})
	assert.ErrorIs(t, err, notify.ErrStrategyNotConfigured)
}

func TestSendersFromConfig(t *testing.T) {
	s := SendersFromConfig(testConfig())
	assert.NotNil(t, s.Email)
	assert.NotNil(t, s.SMS)
	assert.NotNil(t, s.Push)

	empty := SendersFromConfig(&config.Config{})
	assert.Nil(t, empty.Email)
	assert.Nil(t, empty.SMS)
	assert.Nil(t, empty.Push)
}

func TestSendersFromConfigPushEndToEnd(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Push.Ntfy.URL = srv.URL
	n := notify.New(Build(cfg, SendersFromConfig(cfg)))

	out, err := n.Notify(context.Background(), model.Request{Provider: model.ProviderPush, Message: "Notification content"})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeSuccess, out)
	assert.Equal(t, "/herald-1a", gotPath)
	assert.Equal(t, "Notification content", gotBody)
}

func TestSendersFromConfigSMSEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.SMS.Gateway.URL = srv.URL
	n := notify.New(Build(cfg, SendersFromConfig(cfg)))

	out, err := n.Notify(context.Background(), model.Request{Provider: model.ProviderSMS, Message: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeFailure, out)
}

// stubNotifier answers per provider and tracks concurrency.
type stubNotifier struct {
	mu       sync.Mutex
	outcomes map[model.Provider]model.Outcome
	errs     map[model.Provider]error
	delay    time.Duration
	calls    []model.Request
	inflight atomic.Int32
	peak     atomic.Int32
}

func (s *stubNotifier) Notify(ctx context.Context, req model.Request) (model.Outcome, error) {
	cur := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		peak := s.peak.Load()
		if cur <= peak || s.peak.CompareAndSwap(peak, cur) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := s.errs[req.Provider]; err != nil {
		return "", err
	}
	return s.outcomes[req.Provider], nil
}

func TestBroadcastResultsInOrder(t *testing.T) {
	sendErr := errors.New("gateway down")
	n := &stubNotifier{
		outcomes: map[model.Provider]model.Outcome{
			model.ProviderEmail: model.OutcomeSuccess,
			model.ProviderPush:  model.OutcomeFailure,
		},
		errs: map[model.Provider]error{model.ProviderSMS: sendErr},
	}
	providers := []model.Provider{model.ProviderPush, model.ProviderEmail, model.ProviderSMS}

	results := Broadcast(context.Background(), n, providers, "hi", Options{Concurrency: 3, Logger: discardLogger()})
	require.Len(t, results, 3)

	assert.Equal(t, model.ProviderPush, results[0].Provider)
	assert.Equal(t, model.OutcomeFailure, results[0].Outcome)
	assert.False(t, results[0].OK())

	assert.Equal(t, model.ProviderEmail, results[1].Provider)
	assert.True(t, results[1].OK())

	assert.Equal(t, model.ProviderSMS, results[2].Provider)
	assert.Same(t, sendErr, results[2].Err)
	assert.False(t, results[2].OK())

	assert.Len(t, n.calls, 3)
	for _, c := range n.calls {
		assert.Equal(t, "hi", c.Message)
	}
}

func TestBroadcastRespectsConcurrency(t *testing.T) {
	n := &stubNotifier{
		outcomes: map[model.Provider]model.Outcome{model.ProviderEmail: model.OutcomeSuccess},
		delay:    20 * time.Millisecond,
	}
	providers := []model.Provider{model.ProviderEmail, model.ProviderEmail, model.ProviderEmail, model.ProviderEmail}

	results := Broadcast(context.Background(), n, providers, "m", Options{Concurrency: 1, Logger: discardLogger()})
	require.Len(t, results, 4)
	assert.Equal(t, int32(1), n.peak.Load())
}

func TestBroadcastTimeout(t *testing.T) {
	n := &stubNotifier{delay: time.Second}

	results := Broadcast(context.Background(), n, []model.Provider{model.ProviderEmail}, "m",
		Options{Timeout: 10 * time.Millisecond, Logger: discardLogger()})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestBroadcastMissingStrategy(t *testing.T) {
	n := notify.New(notify.Strategies{})
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	results := Broadcast(context.Background(), n, []model.Provider{model.ProviderSMS}, "hi", Options{Logger: log})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, notify.ErrStrategyNotConfigured)
	assert.Contains(t, buf.String(), "notification failed")
	assert.Contains(t, buf.String(), "provider=sms")
}

func TestBroadcastLogsOutcomes(t *testing.T) {
	n := &stubNotifier{outcomes: map[model.Provider]model.Outcome{
		model.ProviderEmail: model.OutcomeSuccess,
		model.ProviderPush:  model.OutcomeFailure,
	}}
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	Broadcast(context.Background(), n, []model.Provider{model.ProviderEmail, model.ProviderPush}, "m", Options{Logger: log})

	assert.Contains(t, buf.String(), "notification delivered")
	assert.Contains(t, buf.String(), "notification not delivered")
}

func TestBroadcastNoProviders(t *testing.T) {
	results := Broadcast(context.Background(), &stubNotifier{}, nil, "m", Options{})
	assert.Empty(t, results)
}
