package impl

import (
	"context"
	"fmt"
	"net/url"

	"blogger-auth/internal/service"
)

type mailSender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

var _ service.EmailService = (*EmailServiceImpl)(nil)

// EmailServiceImpl builds the confirmation and recovery messages; actual
// delivery is the mailer's concern.
type EmailServiceImpl struct {
	Mailer        mailSender
	PublicBaseURL string // e.g. https://blogger.example.com
}

func NewEmailServiceImpl(mailer mailSender, publicBaseURL string) *EmailServiceImpl {
	return &EmailServiceImpl{Mailer: mailer, PublicBaseURL: publicBaseURL}
}

func (e *EmailServiceImpl) SendConfirmation(ctx context.Context, to, code string) error {
	link := fmt.Sprintf("%s/auth/registration-confirmation?code=%s", e.PublicBaseURL, url.QueryEscape(code))
	subject := "Confirm your email address"
	text := fmt.Sprintf("Please confirm your email address by following the link: %s", link)
	html := fmt.Sprintf(`<p>Please confirm your email address by clicking the link below:</p><p><a href=%q>Confirm Email</a></p>`, link)
	return e.Mailer.Send(ctx, to, subject, text, html)
}

func (e *EmailServiceImpl) SendRecovery(ctx context.Context, to, recoveryCode string) error {
	link := fmt.Sprintf("%s/auth/password-recovery?recoveryCode=%s", e.PublicBaseURL, url.QueryEscape(recoveryCode))
	subject := "Password recovery"
	text := fmt.Sprintf("To finish password recovery please follow the link: %s", link)
	html := fmt.Sprintf(`<p>To finish password recovery please follow the link below:</p><p><a href=%q>Password recovery</a></p>`, link)
	return e.Mailer.Send(ctx, to, subject, text, html)
}
