// Package mail delivers digests over SMTP.
package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"NoticeBot/internal/config"
	"NoticeBot/internal/ports"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender implements ports.Deliverer with STARTTLS and PLAIN auth.
type Sender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	now      func() time.Time
	send     sendFunc
}

var _ ports.Deliverer = (*Sender)(nil)

// NewSender builds a sender from configuration.
func NewSender(cfg config.MailConfig) *Sender {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Sender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		to:       cfg.To,
		now:      time.Now,
		send:     smtp.SendMail,
	}
}

// Deliver sends one plain-text message to all recipients.
func (s *Sender) Deliver(ctx context.Context, subject, body string) error {
	if s.host == "" || s.from == "" || len(s.to) == 0 {
		return fmt.Errorf("mail sender misconfigured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	msg := buildMessage(s.from, s.to, subject, body, s.now())
	if err := s.send(addr, auth, s.from, s.to, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func buildMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	sb.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	sb.WriteString("Date: " + date.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > 76 {
		sb.WriteString(encoded[:76])
		sb.WriteString("\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		sb.WriteString(encoded)
		sb.WriteString("\r\n")
	}
	return []byte(sb.String())
}
