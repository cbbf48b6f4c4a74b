package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/config"
	"go.uber.org/zap"
)

// SMTPMailer sends email through an authenticated SMTP relay.
type SMTPMailer struct {
	cfg config.EmailConfig
	log *zap.Logger
}

func NewSMTPMailer(cfg config.EmailConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendConfirmation(recipientEmail, recipientName, doctorName, speciality string, date time.Time, clock string) (bool, string) {
	if !validAddress(recipientEmail) {
		m.log.Warn("invalid patient email", zap.String("email", recipientEmail))
		return false, "the patient's email address is not valid"
	}

	subject := "Medical Appointment Confirmation - " + m.cfg.FromName
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\n"+
			"Your medical appointment has been scheduled:\r\n\r\n"+
			"  Doctor: Dr. %s\r\n"+
			"  Speciality: %s\r\n"+
			"  Date: %s\r\n"+
			"  Time: %s\r\n\r\n"+
			"Please arrive 15 minutes early and bring your identity document.\r\n"+
			"To cancel or reschedule, notify the clinic at least 24 hours in advance.\r\n\r\n"+
			"%s\r\n"+
			"This is an automated message, please do not reply.\r\n",
		recipientName, doctorName, speciality, date.Format("02/01/2006"), clock, m.cfg.FromName,
	)

	if err := m.send(recipientName, recipientEmail, subject, body); err != nil {
		m.log.Warn("confirmation email failed",
			zap.String("email", recipientEmail),
			zap.Error(err),
		)
		return false, fmt.Sprintf("error sending the email: %v", err)
	}
	return true, "confirmation email sent successfully"
}

func (m *SMTPMailer) SendReminder(recipientEmail, recipientName, doctorName string, date time.Time, clock string) (bool, string) {
	if !validAddress(recipientEmail) {
		return false, "the patient's email address is not valid"
	}

	subject := "Appointment Reminder - " + m.cfg.FromName
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\n"+
			"This is a reminder of your upcoming appointment:\r\n\r\n"+
			"  Doctor: Dr. %s\r\n"+
			"  Date: %s\r\n"+
			"  Time: %s\r\n\r\n"+
			"Please arrive 15 minutes early.\r\n\r\n"+
			"Regards,\r\n%s\r\n",
		recipientName, doctorName, date.Format("02/01/2006"), clock, m.cfg.FromName,
	)

	if err := m.send(recipientName, recipientEmail, subject, body); err != nil {
		return false, fmt.Sprintf("error sending the reminder: %v", err)
	}
	return true, "reminder sent successfully"
}

func (m *SMTPMailer) send(toName, toAddr, subject, body string) error {
	if m.cfg.Username == "" || m.cfg.Password == "" {
		return fmt.Errorf("email configuration incomplete: SMTP username and password are required")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	msg := buildMessage(m.cfg.FromName, m.cfg.Username, toName, toAddr, subject, body)

	return smtp.SendMail(addr, auth, m.cfg.Username, []string{toAddr}, []byte(msg))
}

func buildMessage(fromName, fromAddr, toName, toAddr, subject, body string) string {
	// Minimal RFC 5322 message; enough for most SMTP relays.
	return fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		fromName, fromAddr, toName, toAddr, subject, body,
	)
}

func validAddress(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.Contains(email, "@")
}
