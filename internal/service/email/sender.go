// internal/service/email/sender.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig identifies one SMTP account. Secure means implicit TLS on
// connect (port 465); otherwise STARTTLS is negotiated.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	FromName string
	Secure   bool
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != ""
}

// Sender delivers emails over SMTP.
type Sender struct {
	cfg SMTPConfig
}

func NewSender(cfg SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send sends an email with a subject and body (HTML supported).
func (s *Sender) Send(to, subject, bodyHTML string) error {
	from := fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.User)
	msg := []byte(
		fmt.Sprintf("From: %s\r\n", from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			wrapHTMLTemplate(s.cfg.FromName, bodyHTML),
	)

	serverAddr := s.cfg.Host + ":" + s.cfg.Port

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.cfg.Host,
	}

	if s.cfg.Secure {
		// Port 465 - implicit TLS
		conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
		if err != nil {
			return fmt.Errorf("tls dial failed: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			return fmt.Errorf("smtp client failed: %w", err)
		}
		defer client.Quit()

		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth failed: %w", err)
		}

		return s.sendMail(client, to, msg)
	}

	// Port 587 - STARTTLS
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	if err := smtp.SendMail(serverAddr, auth, s.cfg.User, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail failed: %w", err)
	}

	return nil
}

func (s *Sender) sendMail(client *smtp.Client, to string, msg []byte) error {
	if err := client.Mail(s.cfg.User); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return nil
}

// wrapHTMLTemplate wraps the body into the shared email layout.
func wrapHTMLTemplate(brand, content string) string {
	if brand == "" {
		brand = "Checkout"
	}
	header := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8" />
		<title>` + brand + `</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f6f8fa; padding: 30px; }
			.container { max-width: 600px; margin: auto; background: #fff; border-radius: 10px; overflow: hidden; box-shadow: 0 2px 5px rgba(0,0,0,0.1); }
			.header { background: #00a859; color: white; text-align: center; padding: 20px; font-size: 22px; font-weight: bold; }
			.footer { background: #f1f1f1; color: #555; text-align: center; padding: 15px; font-size: 13px; }
			.body { padding: 25px; color: #333; line-height: 1.6; }
			.pix-code { background: #f1f1f1; padding: 12px; border-radius: 5px; font-family: monospace; word-break: break-all; }
			a.button { display: inline-block; background: #00a859; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none; }
		</style>
	</head>
	<body>
	<div class="container">
		<div class="header">` + brand + `</div>
		<div class="body">
	`

	footer := `
		</div>
		<div class="footer">
			<p>© 2026 ` + brand + `. All rights reserved.</p>
		</div>
	</div>
	</body>
	</html>
	`

	return header + strings.TrimSpace(content) + footer
}
