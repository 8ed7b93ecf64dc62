// Package dispatch wires configured strategies into a notify.Notifier and
// fans a single message out to several providers.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/darshan-rambhia/herald/internal/config"
	"github.com/darshan-rambhia/herald/internal/model"
	"github.com/darshan-rambhia/herald/internal/notify"
	"github.com/darshan-rambhia/herald/internal/transport"
)

// Senders holds the send functions strategies are built with. A nil
// sender leaves its provider unbound even if config declares it.
type Senders struct {
	Email notify.SendEmailFunc
	SMS   notify.SendSMSFunc
	Push  notify.SendPushFunc
}

// SendersFromConfig builds transport-backed senders for every provider
// section present in cfg.
func SendersFromConfig(cfg *config.Config) Senders {
	var s Senders
	if e := cfg.Email; e != nil {
		s.Email = transport.NewSMTP(transport.SMTPConfig{
			Host:       e.SMTP.Host,
			Port:       e.SMTP.Port,
			Username:   e.SMTP.Username,
			Password:   e.SMTP.Password,
			From:       e.SMTP.From,
			Encryption: e.SMTP.Encryption,
			Timeout:    cfg.Timeout.Duration,
		}).SendEmail
	}
	if sms := cfg.SMS; sms != nil {
		s.SMS = transport.NewWebhookSMS(sms.Gateway.URL, sms.Gateway.Method, sms.Gateway.Headers).SendSMS
	}
	if p := cfg.Push; p != nil {
		s.Push = transport.NewNtfy(p.Ntfy.URL, p.Ntfy.TopicPrefix, p.Ntfy.Token).SendPush
	}
	return s
}

// Build binds a strategy for each provider that has both a config section
// and a sender. Every known provider appears as a key; unbound ones map to nil.
func Build(cfg *config.Config, senders Senders) notify.Strategies {
	strategies := notify.Strategies{
		model.ProviderEmail: nil,
		model.ProviderSMS:   nil,
		model.ProviderPush:  nil,
	}
	if e := cfg.Email; e != nil && senders.Email != nil {
		strategies[model.ProviderEmail] = notify.NewEmail(e.Address, e.Subject, senders.Email)
	}
	if s := cfg.SMS; s != nil && senders.SMS != nil {
		strategies[model.ProviderSMS] = notify.NewSMS(s.PhoneNumber, senders.SMS)
	}
	if p := cfg.Push; p != nil && senders.Push != nil {
		strategies[model.ProviderPush] = notify.NewPush(p.UserID, senders.Push)
	}
	return strategies
}

// Notifier is the part of notify.Notifier that Broadcast needs.
type Notifier interface {
	Notify(ctx context.Context, req model.Request) (model.Outcome, error)
}

// Result is the outcome of delivering to one provider.
type Result struct {
	Provider model.Provider
	Outcome  model.Outcome
	Err      error
	Duration time.Duration
}

// OK reports whether the delivery succeeded without error.
func (r Result) OK() bool {
	return r.Err == nil && r.Outcome == model.OutcomeSuccess
}

// Options tunes Broadcast.
type Options struct {
	// Concurrency caps in-flight deliveries. Values below 1 mean one at a time.
	Concurrency int
	// Timeout bounds each delivery. Zero means no per-delivery timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Broadcast sends message once to each provider and returns one Result per
// provider, in the order given. A failing provider does not stop the others.
func Broadcast(ctx context.Context, n Notifier, providers []model.Provider, message model.Message, opts Options) []Result {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(providers))
	var g errgroup.Group
	g.SetLimit(limit)

	for i, p := range providers {
		g.Go(func() error {
			results[i] = deliver(ctx, n, p, message, opts.Timeout)
			logResult(log, results[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func deliver(ctx context.Context, n Notifier, p model.Provider, message model.Message, timeout time.Duration) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	outcome, err := n.Notify(ctx, model.Request{Provider: p, Message: message})
	return Result{Provider: p, Outcome: outcome, Err: err, Duration: time.Since(start)}
}

func logResult(log *slog.Logger, r Result) {
	switch {
	case r.Err != nil:
		log.Error("notification failed", "provider", r.Provider, "error", r.Err, "duration", r.Duration)
	case r.Outcome != model.OutcomeSuccess:
		log.Warn("notification not delivered", "provider", r.Provider, "outcome", r.Outcome, "duration", r.Duration)
	default:
		log.Info("notification delivered", "provider", r.Provider, "outcome", r.Outcome, "duration", r.Duration)
	}
}
