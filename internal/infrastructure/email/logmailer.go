package email

import (
	"context"

	"github.com/frankincense-labs/cx-management/internal/application/notification"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

// LogMailer records messages in the log instead of sending them.
type LogMailer struct {
	logger logger.Interface
}

func NewLogMailer(log logger.Interface) *LogMailer {
	return &LogMailer{logger: log}
}

func (m *LogMailer) Send(_ context.Context, msg notification.Message) error {
	m.logger.Infow("email suppressed",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
