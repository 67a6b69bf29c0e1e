package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type sentEmail struct {
	to, subject, html string
}

// channelEmailSender hands each delivery to the test over a channel so the
// asynchronous dispatch can be observed.
type channelEmailSender struct {
	sent chan sentEmail
}

func (s *channelEmailSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.sent <- sentEmail{to: to, subject: subject, html: htmlBody}
	return nil
}

func TestSendDispatchesEmail(t *testing.T) {
	sender := &channelEmailSender{sent: make(chan sentEmail, 1)}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), sender)

	err := svc.Send(context.Background(), Notification{
		Recipient: "alice@example.com",
		Channels:  []Channel{ChannelEmail},
		Content: Content{
			EmailSubject:  "hello",
			EmailHTMLBody: "<p>hi</p>",
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-sender.sent:
		if got.to != "alice@example.com" || got.subject != "hello" || got.html != "<p>hi</p>" {
			t.Fatalf("delivered %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("email was never dispatched")
	}
}

func TestSendIgnoresUnknownChannels(t *testing.T) {
	sender := &channelEmailSender{sent: make(chan sentEmail, 1)}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), sender)

	if err := svc.Send(context.Background(), Notification{
		Recipient: "alice@example.com",
		Channels:  []Channel{"carrier-pigeon"},
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-sender.sent:
		t.Fatalf("unexpected delivery %+v", got)
	case <-time.After(100 * time.Millisecond):
	}
}
