package notify

import (
	"context"
	"fmt"
)

// Mailer abstracts outbound email delivery (SMTP relay, provider API).
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// EmailSender composes per-event messages and hands them to a Mailer.
type EmailSender struct {
	mailer Mailer
}

var _ Sender = (*EmailSender)(nil)

func NewEmailSender(mailer Mailer) *EmailSender {
	return &EmailSender{mailer: mailer}
}

// Send composes the message for the event and delivers it to the account's
// email address. Events without a recipient address are skipped.
func (s *EmailSender) Send(ctx context.Context, e Event) error {
	if e.Email == "" {
		return nil
	}

	subject, body := compose(e)
	if err := s.mailer.SendMail(ctx, e.Email, subject, body); err != nil {
		return fmt.Errorf("notify.EmailSender.Send: %w", err)
	}

	return nil
}

func compose(e Event) (subject, body string) {
	name := e.Name
	if name == "" {
		name = e.Email
	}

	switch e.Type {
	case EventApprovalResult:
		return "Your account has been approved",
			fmt.Sprintf("Hello %s,\n\nYour account is now active. You can sign in right away.", name)

	case EventRejection:
		return "Your account registration was declined",
			fmt.Sprintf("Hello %s,\n\nYour registration was declined.\nReason: %s", name, e.Reason)

	case EventSuspension:
		body := fmt.Sprintf("Hello %s,\n\nYour account has been suspended.\nReason: %s", name, e.Reason)
		if until := e.Detail["ends_at"]; until != "" {
			body += fmt.Sprintf("\nThe suspension ends at %s.", until)
		}
		return "Your account has been suspended", body

	case EventUnsuspension:
		return "Your account suspension has been lifted",
			fmt.Sprintf("Hello %s,\n\nYour account is active again.", name)

	case EventDeletion:
		return "Your account has been deleted",
			fmt.Sprintf("Hello %s,\n\nYour account has been deleted.\nReason: %s", name, e.Reason)

	case EventPasswordReset:
		return "Your password has been reset",
			fmt.Sprintf("Hello %s,\n\nAn administrator reset your password.\nTemporary password: %s\nPlease change it after signing in.",
				name, e.Detail["temporary_password"])

	default:
		return fmt.Sprintf("Account notice (%s)", e.Type),
			fmt.Sprintf("Hello %s,\n\nThere has been an update to your account.", name)
	}
}
