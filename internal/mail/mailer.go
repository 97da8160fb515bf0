package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"cartside/api/internal/config"
)

// Sender delivers account-verification mail. It is the seam the lifecycle
// services depend on; tests substitute a fake.
type Sender interface {
	SendOTP(ctx context.Context, to string, name string, code string, expiresAt time.Time) error
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2>Hi {{.Name}},</h2>
	<p>Your verification code is:</p>
	<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
	<p>The code expires at {{.Expires}}. If you did not request it, ignore this email.</p>
</body>
</html>
`))

func (m *SMTPMailer) SendOTP(ctx context.Context, to string, name string, code string, expiresAt time.Time) error {
	var body bytes.Buffer
	err := otpTemplate.Execute(&body, struct {
		Name    string
		Code    string
		Expires string
	}{
		Name:    name,
		Code:    code,
		Expires: expiresAt.Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render otp mail: %w", err)
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your verification code\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n",
		m.cfg.From, to, body.String(),
	)

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}
