package mail

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewSelectsBackend(t *testing.T) {
	cases := map[string]string{
		"":        "*mail.Console",
		"console": "*mail.Console",
		"LOCMEM":  "*mail.Locmem",
		"dummy":   "mail.Dummy",
		"smtp":    "*mail.SMTP",
	}
	for backend, want := range cases {
		sender, err := New(Config{Backend: backend, Host: "localhost"})
		if err != nil {
			t.Fatalf("%q: %v", backend, err)
		}
		if got := typeName(sender); got != want {
			t.Fatalf("%q: expected %s, got %s", backend, want, got)
		}
	}
	if _, err := New(Config{Backend: "pigeon"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *Console:
		return "*mail.Console"
	case *Locmem:
		return "*mail.Locmem"
	case Dummy:
		return "mail.Dummy"
	case *SMTP:
		return "*mail.SMTP"
	default:
		return "unknown"
	}
}

func TestConsoleWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf)
	console.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := console.Send(context.Background(), Message{
		From:    "site@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "New response",
		Body:    "subscribe: yes\nterms: no",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"To: a@example.com, b@example.com\r\n",
		"Subject: New response\r\n",
		"Date: Tue, 02 Jan 2024 03:04:05 +0000\r\n",
		"\r\n\r\nsubscribe: yes\r\nterms: no",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLocmemOutbox(t *testing.T) {
	box := NewLocmem()
	msg := Message{From: "f@example.com", To: []string{"t@example.com"}, Subject: "hi", Body: "body"}
	if err := box.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if diff := cmp.Diff([]Message{msg}, box.Outbox()); diff != "" {
		t.Fatalf("outbox mismatch (-want +got):\n%s", diff)
	}
	box.Reset()
	if len(box.Outbox()) != 0 {
		t.Fatalf("expected empty outbox after reset")
	}
}

func TestSendValidatesMessages(t *testing.T) {
	box := NewLocmem()
	if err := box.Send(context.Background(), Message{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	err := box.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "x\r\nBcc: evil@example.com"})
	if err == nil {
		t.Fatalf("expected header injection to be rejected")
	}
	if len(box.Outbox()) != 0 {
		t.Fatalf("rejected messages must not be stored")
	}
}

func TestSMTPUsesTransport(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotAuth smtp.Auth
	var gotBody []byte
	sender := NewSMTP("mail.example.com", 587, "user", "pass").WithSendMail(
		func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotFrom, gotTo, gotBody = addr, auth, from, to, msg
			return nil
		})

	err := sender.Send(context.Background(), Message{From: "f@example.com", To: []string{"t@example.com"}, Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "mail.example.com:587" || gotFrom != "f@example.com" || gotAuth == nil {
		t.Fatalf("unexpected transport call: %s %s %v", gotAddr, gotFrom, gotAuth)
	}
	if diff := cmp.Diff([]string{"t@example.com"}, gotTo); diff != "" {
		t.Fatalf("recipients mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(gotBody, []byte("Subject: s\r\n")) {
		t.Fatalf("expected subject header, got %q", gotBody)
	}

	failing := NewSMTP("mail.example.com", 0, "", "").WithSendMail(
		func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") })
	if err := failing.Send(context.Background(), Message{To: []string{"t@example.com"}}); err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestMailAdmins(t *testing.T) {
	box := NewLocmem()
	if err := MailAdmins(context.Background(), box, "f@example.com", nil, "s", "b"); err != nil {
		t.Fatalf("no admins: %v", err)
	}
	if len(box.Outbox()) != 0 {
		t.Fatalf("expected nothing sent without admins")
	}
	if err := MailAdmins(context.Background(), box, "f@example.com", []string{"ops@example.com"}, "s", "b"); err != nil {
		t.Fatalf("mail admins: %v", err)
	}
	if got := box.Outbox(); len(got) != 1 || got[0].To[0] != "ops@example.com" {
		t.Fatalf("unexpected outbox: %+v", got)
	}
}
