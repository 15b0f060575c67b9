package mailio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/douxx-tech/marechan/internal/config"
)

// smtpDialTimeout caps connection establishment when the context
// carries no earlier deadline.
const smtpDialTimeout = 30 * time.Second

// Send delivers a composed message through the assistant's SMTP
// account. Port 465 speaks TLS from the first byte, port 587 upgrades
// via STARTTLS, and any other port stays plain (localhost relays).
// AUTH PLAIN runs only when both user and password are configured.
// Each call opens and closes its own connection.
func Send(ctx context.Context, es config.EmailSettings, from, to string, msg []byte) error {
	addr := net.JoinHostPort(es.SMTPServer, strconv.Itoa(es.SMTPPort))

	dialTimeout := smtpDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < dialTimeout {
			dialTimeout = remaining
		}
	}
	dialer := &net.Dialer{Timeout: dialTimeout}

	var client *smtp.Client
	var err error

	if es.SMTPPort == 465 {
		conn, dialErr := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: es.SMTPServer})
		if dialErr != nil {
			return fmt.Errorf("dial SMTPS %s: %w", addr, dialErr)
		}
		client, err = smtp.NewClient(conn, es.SMTPServer)
		if err != nil {
			conn.Close()
			return fmt.Errorf("create SMTP client on %s: %w", addr, err)
		}
	} else {
		conn, dialErr := dialer.DialContext(ctx, "tcp", addr)
		if dialErr != nil {
			return fmt.Errorf("dial SMTP %s: %w", addr, dialErr)
		}
		client, err = smtp.NewClient(conn, es.SMTPServer)
		if err != nil {
			conn.Close()
			return fmt.Errorf("create SMTP client on %s: %w", addr, err)
		}
	}
	defer client.Close()

	if err := client.Hello("localhost"); err != nil {
		return fmt.Errorf("EHLO: %w", err)
	}

	if es.SMTPPort == 587 {
		if err := client.StartTLS(&tls.Config{ServerName: es.SMTPServer}); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	}

	if es.SMTPUser != "" && es.SMTPPassword != "" {
		auth := smtp.PlainAuth("", es.SMTPUser, es.SMTPPassword, es.SMTPServer)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("AUTH: %w", err)
		}
	}

	if err := client.Mail(bareAddress(from)); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(bareAddress(to)); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close DATA: %w", err)
	}

	return client.Quit()
}

// bareAddress reduces "Name <addr@host>" to "addr@host" for the SMTP
// envelope. Strings without angle brackets pass through unchanged.
func bareAddress(s string) string {
	if end := len(s) - 1; end > 0 && s[end] == '>' {
		if start := strings.LastIndexByte(s, '<'); start >= 0 {
			return s[start+1 : end]
		}
	}
	return s
}
