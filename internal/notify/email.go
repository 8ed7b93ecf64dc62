package notify

import (
	"context"

	"github.com/darshan-rambhia/herald/internal/model"
)

// SendEmailFunc delivers a single email.
type SendEmailFunc func(ctx context.Context, req model.EmailRequest) (model.Outcome, error)

// EmailStrategy sends every message to a fixed address with a fixed subject.
type EmailStrategy struct {
	address string
	subject string
	send    SendEmailFunc
}

var _ Strategy = (*EmailStrategy)(nil)

// NewEmail creates an email strategy. The address is not validated here.
func NewEmail(address, subject string, send SendEmailFunc) *EmailStrategy {
	return &EmailStrategy{
		address: address,
		subject: subject,
		send:    send,
	}
}

func (e *EmailStrategy) Address() string { return e.address }
func (e *EmailStrategy) Subject() string { return e.subject }

func (e *EmailStrategy) Notify(ctx context.Context, message model.Message) (model.Outcome, error) {
	return e.send(ctx, model.EmailRequest{
		Address: e.address,
		Subject: e.subject,
		Message: message,
	})
}
