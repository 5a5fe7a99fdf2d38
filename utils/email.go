package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text and HTML mails over SMTP.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
}

func NewSMTPMailer(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass}
}

func (m *SMTPMailer) Send(to, subject, textBody, htmlBody string) error {
	if m.Host == "" {
		return fmt.Errorf("smtp host is not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.User)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	return d.DialAndSend(msg)
}
