package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"

	"santodinheiro/config"
	"santodinheiro/logging"
)

// Sender handles sending transactional emails via SMTP
type Sender struct {
	cfg *config.Config
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config) *Sender {
	return &Sender{cfg: cfg}
}

// Enabled reports whether SMTP is configured. The scheduler skips reminder
// runs entirely when it is not.
func (s *Sender) Enabled() bool {
	return s.cfg.SMTPHost != ""
}

// SendUpcomingIncomeReminder tells a user about the next income scheduled
// after today ("you'll receive X on day Y").
func (s *Sender) SendUpcomingIncomeReminder(to, name, description string, dayOfMonth int, amount decimal.Decimal) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming income reminder"

	body := fmt.Sprintf("Hi %s,\n\n", name)
	body += fmt.Sprintf(
		"You are scheduled to receive %s (%s) on day %d of this month.\n",
		amount.StringFixed(2), description, dayOfMonth,
	)
	body += "\nSanto Dinheiro"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		logging.Log.WithField("to", to).Errorf("Failed to send reminder email: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logging.Log.WithField("to", to).Info("Sent upcoming income reminder")
	return nil
}
