// Package transport provides concrete send functions that the notify
// strategies can be built with: SMTP email, ntfy push and an HTTP SMS
// gateway.
package transport

import (
	"fmt"

	"github.com/darshan-rambhia/herald/internal/model"
)

// outcomeForStatus maps an HTTP status to a delivery outcome.
func outcomeForStatus(name string, status int) (model.Outcome, error) {
	switch {
	case status >= 200 && status < 300:
		return model.OutcomeSuccess, nil
	case status >= 400 && status < 500:
		return model.OutcomeFailure, nil
	default:
		return "", fmt.Errorf("%s: unexpected status %d", name, status)
	}
}
