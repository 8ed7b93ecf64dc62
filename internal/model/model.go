// Package model defines the shared domain types for Herald.
package model

import (
	"fmt"
	"strings"
)

// Provider identifies a notification channel.
type Provider string

const (
	ProviderEmail Provider = "email"
	ProviderSMS   Provider = "sms"
	ProviderPush  Provider = "push_notification"
)

// Providers returns every known provider in declaration order.
func Providers() []Provider {
	return []Provider{ProviderEmail, ProviderSMS, ProviderPush}
}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderEmail, ProviderSMS, ProviderPush:
		return true
	}
	return false
}

func (p Provider) String() string { return string(p) }

// ParseProvider converts user input into a Provider. Matching is
// case-insensitive; "push" and "pushNotification" are accepted for
// push_notification.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return ProviderEmail, nil
	case "sms":
		return ProviderSMS, nil
	case "push_notification", "pushnotification", "push":
		return ProviderPush, nil
	}
	return "", fmt.Errorf("unknown provider %q (expected email, sms or push_notification)", s)
}

// Message is an opaque notification body.
type Message = string

// Outcome is the result reported by a completed delivery attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

func (o Outcome) String() string { return string(o) }

// Request asks the dispatcher to deliver Message through Provider.
type Request struct {
	Provider Provider `json:"provider"`
	Message  Message  `json:"message"`
}

// EmailRequest is handed to an email send function.
type EmailRequest struct {
	Address string  `json:"email_address"`
	Subject string  `json:"subject"`
	Message Message `json:"message"`
}

// SMSRequest is handed to an SMS send function.
type SMSRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Message     Message `json:"message"`
}

// PushRequest is handed to a push notification send function.
type PushRequest struct {
	UserID  string  `json:"user_id"`
	Message Message `json:"message"`
}
