package notify

import (
	"context"

	"github.com/darshan-rambhia/herald/internal/model"
)

// SendSMSFunc delivers a single text message.
type SendSMSFunc func(ctx context.Context, req model.SMSRequest) (model.Outcome, error)

// SMSStrategy sends every message to a fixed phone number.
type SMSStrategy struct {
	phoneNumber string
	send        SendSMSFunc
}

var _ Strategy = (*SMSStrategy)(nil)

// NewSMS creates an SMS strategy.
func NewSMS(phoneNumber string, send SendSMSFunc) *SMSStrategy {
	return &SMSStrategy{phoneNumber: phoneNumber, send: send}
}

func (s *SMSStrategy) PhoneNumber() string { return s.phoneNumber }

func (s *SMSStrategy) Notify(ctx context.Context, message model.Message) (model.Outcome, error) {
	return s.send(ctx, model.SMSRequest{PhoneNumber: s.phoneNumber, Message: message})
}
