package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPSender delivers emails over SMTP with implicit TLS (port 465 style).
// Every network step runs against a single connection deadline so a stalled
// relay fails the send instead of hanging the worker.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
	Timeout  time.Duration
}

// Send implements common.EmailSender.
func (s SMTPSender) Send(to, subject, html string) error {
	host := strings.TrimSpace(s.Host)
	if host == "" {
		return fmt.Errorf("smtp: host not configured")
	}
	port := s.Port
	if port == "" {
		port = "465"
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	addr := net.JoinHostPort(host, port)

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: timeout}, "tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp: handshake: %w", err)
	}
	defer func() { _ = client.Close() }()

	if s.Username != "" && s.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", s.Username, s.Password, host)); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}
	if err := client.Mail(s.Sender); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp: rcpt to: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", s.Sender, to, subject) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
		html
	if _, err := wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp: finish message: %w", err)
	}
	return client.Quit()
}
