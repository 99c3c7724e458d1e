package mailer

import (
	"context"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers mail over plain SMTP with AUTH PLAIN. Messages are
// multipart/alternative so clients without HTML rendering still get the
// text part.
type SMTPMailer struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

func New(host string, port int, from, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		From:     from,
		Username: username,
		Password: password,
	}
}

const boundary = "mail-boundary-4cf2"

func (m *SMTPMailer) Send(ctx context.Context, to, subject, text, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String()))
}
