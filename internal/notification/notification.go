package notification

import (
	"context"
	"log/slog"
)

// Channel identifies a delivery mechanism. Email is the only one wired up;
// the type exists so callers do not assume email forever.
type Channel string

const (
	ChannelEmail Channel = "email"
)

// Content holds the message data for each channel.
type Content struct {
	EmailSubject  string
	EmailHTMLBody string
	EmailTextBody string
}

// Notification is the universal object used to send any notification.
type Notification struct {
	Recipient string
	Channels  []Channel
	Content   Content
}

// emailSender is not exposed outside the package.
type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service is the main interface for the notification system.
type Service interface {
	Send(ctx context.Context, n Notification) error
}

type service struct {
	log         *slog.Logger
	emailSender emailSender
}

// NewService creates a new notification service.
func NewService(log *slog.Logger, emailSender emailSender) Service {
	return &service{
		log:         log,
		emailSender: emailSender,
	}
}

// Send dispatches the notification to each channel in its own goroutine and
// returns immediately. Delivery failures are logged, never propagated; a
// slow or broken mail server must not block or fail an API request.
func (s *service) Send(ctx context.Context, n Notification) error {
	for _, channel := range n.Channels {
		go func(ch Channel) {
			var err error
			switch ch {
			case ChannelEmail:
				s.log.Info("dispatching email notification", "recipient", n.Recipient)
				err = s.emailSender.Send(ctx, n.Recipient, n.Content.EmailSubject, n.Content.EmailHTMLBody)
			default:
				s.log.Warn("unsupported notification channel", "channel", ch)
			}

			if err != nil {
				s.log.Error("failed to send notification", "channel", ch, "recipient", n.Recipient, "error", err)
			}
		}(channel)
	}
	return nil
}
