package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"

	"thot/internal/log"
)

func TestEmailNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewEmailNotifier(SMTPConfig{
		Host:       "smtp.example.com",
		Port:       "587",
		Username:   "user",
		Password:   "secret",
		From:       "thot@example.com",
		Recipients: []string{"ops@example.com", "fin@example.com"},
	}, log.New(log.Config{Output: &buf}))

	var (
		sent    *email.Email
		gotAddr string
		gotAuth smtp.Auth
	)
	n.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		sent, gotAddr, gotAuth = e, addr, auth
		return nil
	}

	if err := n.Notify(context.Background(), Message{Subject: "Limit exceeded", Body: "Shop spent 600"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotAuth == nil {
		t.Errorf("addr=%q auth=%v", gotAddr, gotAuth)
	}
	if sent.From != "thot@example.com" || len(sent.To) != 2 || sent.Subject != "Limit exceeded" {
		t.Errorf("unexpected email %+v", sent)
	}
	if string(sent.Text) != "Shop spent 600" {
		t.Errorf("Text = %q", sent.Text)
	}
	if !strings.Contains(buf.String(), "component=notify") {
		t.Errorf("expected notify component in log: %q", buf.String())
	}
}

func TestEmailNotifierError(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: "25"}, log.New(log.Config{Output: &bytes.Buffer{}}))
	var gotAuth smtp.Auth = smtp.PlainAuth("", "x", "y", "z")
	n.send = func(e *email.Email, addr string, auth smtp.Auth) error {
		gotAuth = auth
		return errors.New("connection refused")
	}

	err := n.Notify(context.Background(), Message{Subject: "Digest"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
	if gotAuth != nil {
		t.Error("no credentials should mean no auth")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.New(log.Config{Output: &buf}))
	if err := n.Notify(context.Background(), Message{Subject: "Digest", Body: "all good"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(buf.String(), "subject=Digest") || !strings.Contains(buf.String(), `body="all good"`) {
		t.Errorf("unexpected log %q", buf.String())
	}
}
