package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/darshan-rambhia/herald/internal/model"
)

// SMTPConfig holds connection parameters for the SMTP mailer.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Encryption string // "none", "starttls", "ssl_tls"
	Timeout    time.Duration
}

// SMTPMailer delivers email through an SMTP server using go-mail.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTP creates a mailer. No connection is made until SendEmail.
func NewSMTP(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

// SendEmail sends one plain-text email. A recipient the server (or address
// parser) rejects permanently yields OutcomeFailure; every other problem is
// returned as an error.
func (s *SMTPMailer) SendEmail(ctx context.Context, req model.EmailRequest) (model.Outcome, error) {
	m, err := s.buildMsg(req)
	if errors.Is(err, errInvalidRecipient) {
		return model.OutcomeFailure, nil
	}
	if err != nil {
		return "", err
	}

	c, err := mail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("smtp: create client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && sendErr.Reason == mail.ErrSMTPRcptTo && !sendErr.IsTemp() {
			return model.OutcomeFailure, nil
		}
		return "", fmt.Errorf("smtp: send: %w", err)
	}
	return model.OutcomeSuccess, nil
}

var errInvalidRecipient = errors.New("smtp: invalid recipient")

func (s *SMTPMailer) buildMsg(req model.EmailRequest) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.config.From); err != nil {
		return nil, fmt.Errorf("smtp: invalid from address %q: %w", s.config.From, err)
	}
	if err := m.To(req.Address); err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidRecipient, req.Address, err)
	}
	m.Subject(req.Subject)
	m.SetBodyString(mail.TypeTextPlain, req.Message)
	return m, nil
}

func (s *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithTLSPolicy(tlsPolicy(s.config.Encryption)),
	}
	if s.config.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	if s.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(s.config.Password),
		)
	}
	if s.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.config.Timeout))
	}
	return opts
}

func tlsPolicy(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls", "starttls":
		return mail.TLSMandatory
	default:
		return mail.NoTLS
	}
}
