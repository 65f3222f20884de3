// Package mail sends plain-text notifications through a backend picked by
// settings: console, locmem, dummy or smtp.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNoRecipients is returned for a message without any To address.
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Message is a plain-text email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range append([]string{m.From}, m.To...) {
		if strings.ContainsAny(addr, "\r\n") {
			return fmt.Errorf("mail: invalid address %q", addr)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return errors.New("mail: subject must be a single line")
	}
	return nil
}

// bytes renders the message with RFC 5322 headers.
func (m Message) bytes(now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, messages ...Message) error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string
	Host     string
	Port     int
	Username string
	Password string
	// Out receives console output; stdout when nil.
	Out io.Writer
}

// New builds the backend named by cfg.Backend.
func New(cfg Config) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "console":
		out := cfg.Out
		if out == nil {
			out = os.Stdout
		}
		return NewConsole(out), nil
	case "locmem":
		return NewLocmem(), nil
	case "dummy":
		return Dummy{}, nil
	case "smtp":
		return NewSMTP(cfg.Host, cfg.Port, cfg.Username, cfg.Password), nil
	default:
		return nil, fmt.Errorf("mail: unknown backend %q", cfg.Backend)
	}
}

// Console writes every message to a writer, separated by a dashed line.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewConsole writes messages to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, now: time.Now}
}

func (c *Console) Send(_ context.Context, messages ...Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, msg := range messages {
		if err := msg.validate(); err != nil {
			return err
		}
		if _, err := c.out.Write(msg.bytes(c.now())); err != nil {
			return fmt.Errorf("mail: console write: %w", err)
		}
		if _, err := io.WriteString(c.out, "\r\n"+strings.Repeat("-", 79)+"\r\n"); err != nil {
			return fmt.Errorf("mail: console write: %w", err)
		}
	}
	return nil
}

// Locmem keeps sent messages in memory.
type Locmem struct {
	mu     sync.Mutex
	outbox []Message
}

func NewLocmem() *Locmem { return &Locmem{} }

func (l *Locmem) Send(_ context.Context, messages ...Message) error {
	for _, msg := range messages {
		if err := msg.validate(); err != nil {
			return err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msg := range messages {
		msg.To = slices.Clone(msg.To)
		l.outbox = append(l.outbox, msg)
	}
	return nil
}

// Outbox returns a copy of every message sent so far.
func (l *Locmem) Outbox() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.outbox)
}

// Reset empties the outbox.
func (l *Locmem) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outbox = nil
}

// Dummy discards everything.
type Dummy struct{}

func (Dummy) Send(context.Context, ...Message) error { return nil }

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTP relays messages to a mail server.
type SMTP struct {
	addr     string
	auth     smtp.Auth
	sendMail SendMailFunc
	now      func() time.Time
}

// NewSMTP relays through host:port, authenticating with PLAIN auth when a
// username is set.
func NewSMTP(host string, port int, username, password string) *SMTP {
	if port == 0 {
		port = 25
	}
	s := &SMTP{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// WithSendMail replaces the transport, mostly for tests.
func (s *SMTP) WithSendMail(fn SendMailFunc) *SMTP {
	if fn != nil {
		s.sendMail = fn
	}
	return s
}

func (s *SMTP) Send(ctx context.Context, messages ...Message) error {
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := msg.validate(); err != nil {
			return err
		}
		if err := s.sendMail(s.addr, s.auth, msg.From, msg.To, msg.bytes(s.now())); err != nil {
			return fmt.Errorf("mail: smtp send to %s: %w", strings.Join(msg.To, ", "), err)
		}
	}
	return nil
}

// MailAdmins sends one message to every admin. It is a no-op without admins.
func MailAdmins(ctx context.Context, sender Sender, from string, admins []string, subject, body string) error {
	if sender == nil || len(admins) == 0 {
		return nil
	}
	return sender.Send(ctx, Message{
		From:    from,
		To:      slices.Clone(admins),
		Subject: subject,
		Body:    body,
	})
}
