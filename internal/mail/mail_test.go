package mail

import (
	"errors"
	"strings"
	"testing"

	"github.com/haawall/haawall-go/internal/logger"
)

type fakeMailer struct {
	sent []struct {
		to, subject, body string
	}
	failFor map[string]bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.failFor[to] {
		return errors.New("smtp refused")
	}
	f.sent = append(f.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

func TestFeedbackSubmit(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	svc := NewFeedbackService(mailer, "team@example.edu")
	if !svc.Enabled() {
		t.Fatal("service should be enabled")
	}

	if err := svc.Submit("Lana", "lana@example.com", "The chat was very helpful."); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(mailer.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(mailer.sent))
	}

	notification := mailer.sent[0]
	if notification.to != "team@example.edu" {
		t.Errorf("notification to = %q", notification.to)
	}
	if !strings.Contains(notification.body, "lana@example.com") || !strings.Contains(notification.body, "The chat was very helpful.") {
		t.Errorf("notification body missing fields: %q", notification.body)
	}

	reply := mailer.sent[1]
	if reply.to != "lana@example.com" {
		t.Errorf("auto-reply to = %q", reply.to)
	}
	if !strings.Contains(reply.body, "Lana") {
		t.Error("auto-reply missing sender name")
	}
	if !strings.Contains(reply.body, "زانکۆی سلێمانی") {
		t.Error("auto-reply missing Kurdish section")
	}
}

func TestFeedbackAutoReplyFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{failFor: map[string]bool{"user@example.com": true}}
	svc := NewFeedbackService(mailer, "team@example.edu")

	if err := svc.Submit("User", "user@example.com", "message"); err != nil {
		t.Errorf("Submit() = %v, auto-reply failure should not propagate", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("sent %d emails, want notification only", len(mailer.sent))
	}
}

func TestFeedbackNotificationFailurePropagates(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{failFor: map[string]bool{"team@example.edu": true}}
	svc := NewFeedbackService(mailer, "team@example.edu")

	if err := svc.Submit("User", "user@example.com", "message"); err == nil {
		t.Error("Submit() should fail when the team notification fails")
	}
}

func TestFeedbackDisabled(t *testing.T) {
	t.Parallel()

	svc := NewFeedbackService(nil, "")
	if svc.Enabled() {
		t.Error("service without mailer should be disabled")
	}
	if err := svc.Submit("User", "user@example.com", "message"); err == nil {
		t.Error("Submit() on disabled service should fail")
	}
}

func TestNewSMTPMailerRequiresCredentials(t *testing.T) {
	t.Parallel()

	if m := NewSMTPMailer("smtp.gmail.com", "587", "", "", logger.New("error")); m != nil {
		t.Error("mailer without credentials should be nil")
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg := string(buildMessage("a@example.edu", "b@example.com", "فیدباک", "body text"))
	if !strings.Contains(msg, "From: a@example.edu\r\n") {
		t.Error("From header missing")
	}
	if !strings.Contains(msg, "charset=utf-8") {
		t.Error("charset missing")
	}
	if strings.Contains(msg, "Subject: فیدباک") {
		t.Error("non-ASCII subject not encoded")
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody text") {
		t.Errorf("body separator wrong: %q", msg)
	}
}
