package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"socialgram/pkg/utils"
)

// EmailNotifier sends verification codes over SMTP with implicit TLS.
type EmailNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailNotifier(config utils.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		host:     config.Host,
		port:     config.Port,
		username: config.User,
		password: config.Password,
		from:     config.From,
	}
}

func (e *EmailNotifier) Send(ctx context.Context, destination string, channel Channel, code string) error {
	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is <b>%s</b>. It expires shortly.", code)

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", e.from) +
			fmt.Sprintf("To: %s\r\n", destination) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := e.host + ":" + e.port

	// Implicit TLS for port 465
	tlsConfig := &tls.Config{
		ServerName: e.host,
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return fmt.Errorf("dial smtp server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, e.host)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", e.username, e.password, e.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(destination); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return nil
}
