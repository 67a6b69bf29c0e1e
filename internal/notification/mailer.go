package notification

import (
	"context"
	"log/slog"

	"github.com/notedrop/notedrop-api/internal/notification/templates"
)

// AuthMailer renders and dispatches the transactional emails of the auth
// flows. Both methods are fire-and-forget: rendering failures are logged
// and swallowed, matching the delivery contract of the dispatcher.
type AuthMailer struct {
	svc          Service
	engine       *templates.Engine
	log          *slog.Logger
	supportEmail string
}

// NewAuthMailer creates the mailer used by the auth service.
func NewAuthMailer(svc Service, engine *templates.Engine, log *slog.Logger, supportEmail string) *AuthMailer {
	return &AuthMailer{
		svc:          svc,
		engine:       engine,
		log:          log,
		supportEmail: supportEmail,
	}
}

// SendVerifyEmail sends the address-confirmation email.
func (m *AuthMailer) SendVerifyEmail(ctx context.Context, to, link string) {
	rendered, err := templates.Render(ctx, m.engine, templates.VerifyEmail, templates.VerifyEmailData{
		Link:         link,
		SupportEmail: m.supportEmail,
	})
	if err != nil {
		m.log.Error("failed to render verify email", "to", to, "error", err)
		return
	}
	m.dispatch(ctx, to, rendered)
}

// SendResetPasswordEmail sends the password-reset email.
func (m *AuthMailer) SendResetPasswordEmail(ctx context.Context, to, link string) {
	rendered, err := templates.Render(ctx, m.engine, templates.ResetPassword, templates.ResetPasswordData{
		Link:         link,
		SupportEmail: m.supportEmail,
		ExpiresIn:    "30 minutes",
	})
	if err != nil {
		m.log.Error("failed to render reset password email", "to", to, "error", err)
		return
	}
	m.dispatch(ctx, to, rendered)
}

func (m *AuthMailer) dispatch(ctx context.Context, to string, rendered templates.Rendered) {
	_ = m.svc.Send(ctx, Notification{
		Recipient: to,
		Channels:  []Channel{ChannelEmail},
		Content: Content{
			EmailSubject:  rendered.Subject,
			EmailHTMLBody: rendered.EmailHTML,
			EmailTextBody: rendered.EmailText,
		},
	})
}
