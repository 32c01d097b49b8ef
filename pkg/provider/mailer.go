package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/smtp"
	"time"

	"outreach-backend/internal/outreach/domain"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Mailer delivers email tasks over SMTP
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewMailer creates an SMTP-backed Mailer
func NewMailer(host, port, username, password, from string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from}
}

func (m *Mailer) Submit(ctx context.Context, task *domain.OutreachTask) (string, error) {
	if task.TargetEmail == "" {
		return "", fmt.Errorf("task %s has no target email", task.ID)
	}

	subject := task.Subject
	if subject == "" {
		subject = "Following up"
	}

	body, err := m.compose(task.TargetEmail, subject, task.ContentPreview)
	if err != nil {
		return "", fmt.Errorf("failed to compose message: %w", err)
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port
	if err := smtp.SendMail(addr, auth, m.from, []string{task.TargetEmail}, body); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}

	deliveryID := uuid.New().String()
	log.Printf("[Mailer] sent task %s to %s (delivery %s)", task.ID, task.TargetEmail, deliveryID)
	return deliveryID, nil
}

func (m *Mailer) compose(to, subject, body string) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: m.from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}
	var th mail.InlineHeader
	th.Set("Content-Type", "text/plain; charset=utf-8")
	pw, err := tw.CreatePart(th)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(pw, body); err != nil {
		return nil, err
	}
	pw.Close()
	tw.Close()
	mw.Close()

	return buf.Bytes(), nil
}
