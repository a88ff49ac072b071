package notification

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/estately/estately/internal/observability/metrics"
)

// Sender delivers transactional email. Delivery is best-effort everywhere it
// is called: a failed send is logged and counted but never rolls back the
// state change that triggered it.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers mail over plain SMTP with optional auth.
type SMTPSender struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

func NewSMTPSender(host string, port int, user, pass, from string, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{host: host, port: port, user: user, pass: pass, from: from, logger: logger}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		s.logger.Error("email send failed",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender writes mail to the log instead of the wire. Used in development
// and tests.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to, subject, body string) error {
	s.logger.Info("email (log sender)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

// Mailer composes the messages the platform sends.
type Mailer struct {
	sender Sender
	logger *slog.Logger
}

func NewMailer(sender Sender, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{sender: sender, logger: logger}
}

// SendVerificationCode mails the signup verification code
func (m *Mailer) SendVerificationCode(to, code string) {
	m.send("verification", to, "Verify your email",
		fmt.Sprintf("Your verification code is %s. It expires in 15 minutes.", code))
}

// SendPasswordReset mails the password reset token
func (m *Mailer) SendPasswordReset(to, token string) {
	m.send("password_reset", to, "Reset your password",
		fmt.Sprintf("Use this token to reset your password: %s", token))
}

// SendBillNotice mails the tenant about a new bill
func (m *Mailer) SendBillNotice(to, billType string, amount int64, dueDate string) {
	m.send("bill_notice", to, "New utility bill",
		fmt.Sprintf("A %s bill of %d is due on %s.", billType, amount, dueDate))
}

// SendInquiryNotice mails the property owner about a new inquiry
func (m *Mailer) SendInquiryNotice(to, propertyTitle, message string) {
	m.send("inquiry_notice", to, "New inquiry on your listing",
		fmt.Sprintf("Your listing %q received an inquiry:\n\n%s", propertyTitle, message))
}

func (m *Mailer) send(kind, to, subject, body string) {
	if err := m.sender.Send(to, subject, body); err != nil {
		metrics.ObserveEmail(kind, "error")
		m.logger.Warn("email delivery failed",
			slog.String("kind", kind),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveEmail(kind, "ok")
}
