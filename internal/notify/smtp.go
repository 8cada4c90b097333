package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSink 通过普通 SMTP 投递（587 + PlainAuth）
type SMTPSink struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // 形如 "ReWear Platform <no-reply@rewear.app>"
}

func (s *SMTPSink) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := m.HTML
	if body == "" {
		body = "<p>" + m.Text + "</p>"
	}
	var b strings.Builder
	b.WriteString("From: " + s.From + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	return smtp.SendMail(addr, auth, s.Username, []string{m.To}, []byte(b.String()))
}
