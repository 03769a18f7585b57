package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/cmlabs-hris/worktrack-backend-go/internal/config"
	"github.com/cmlabs-hris/worktrack-backend-go/internal/pkg/retry"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrNoRecipient is returned when a report has nowhere to go.
var ErrNoRecipient = errors.New("no recipient configured")

// EmailService defines the interface for sending emails
type EmailService interface {
	SendReport(ctx context.Context, to, reportName string, pdf []byte) error
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	policy    retry.Policy
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		policy:    retry.Default,
	}, nil
}

type reportEmailData struct {
	ReportName  string
	GeneratedAt string
	FromName    string
}

// SendReport mails the rendered report as a single PDF attachment.
func (s *emailServiceImpl) SendReport(ctx context.Context, to, reportName string, pdf []byte) error {
	if to == "" {
		to = s.cfg.DefaultRecipient
	}
	if to == "" {
		return ErrNoRecipient
	}

	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "report", reportName)
		return nil
	}

	var body bytes.Buffer
	data := reportEmailData{
		ReportName:  reportName,
		GeneratedAt: time.Now().Format("02 Jan 2006 15:04"),
		FromName:    s.cfg.FromName,
	}
	if err := s.templates.ExecuteTemplate(&body, "report.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	message, err := s.buildMessage(to, fmt.Sprintf("Report: %s", reportName), body.String(), reportName+".pdf", pdf)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	return retry.Do(ctx, s.policy, "smtp send", func(ctx context.Context) error {
		if err := s.send(addr, auth, s.cfg.From, []string{to}, message); err != nil {
			return err
		}
		slog.Info("Email sent successfully", "to", to, "report", reportName)
		return nil
	})
}

func (s *emailServiceImpl) buildMessage(to, subject, htmlBody, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=\"UTF-8\""},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	pdfPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", filename)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		pdfPart.Write([]byte(encoded[:76] + "\r\n"))
		encoded = encoded[76:]
	}
	pdfPart.Write([]byte(encoded + "\r\n"))

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
