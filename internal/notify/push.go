package notify

import (
	"context"

	"github.com/darshan-rambhia/herald/internal/model"
)

// SendPushFunc delivers a single in-app push notification.
type SendPushFunc func(ctx context.Context, req model.PushRequest) (model.Outcome, error)

// PushStrategy sends every message to a fixed user.
type PushStrategy struct {
	userID string
	send   SendPushFunc
}

var _ Strategy = (*PushStrategy)(nil)

// NewPush creates a push notification strategy.
func NewPush(userID string, send SendPushFunc) *PushStrategy {
	return &PushStrategy{userID: userID, send: send}
}

func (p *PushStrategy) UserID() string { return p.userID }

func (p *PushStrategy) Notify(ctx context.Context, message model.Message) (model.Outcome, error) {
	return p.send(ctx, model.PushRequest{UserID: p.userID, Message: message})
}
