package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"dinescout/pkg/config"
	"dinescout/pkg/disney"
	"dinescout/pkg/logger"
)

// MailNotifier sends one e-mail per match over SMTP
type MailNotifier struct {
	cfg *config.MailConfig
}

func NewMailNotifier(cfg *config.MailConfig) *MailNotifier {
	return &MailNotifier{cfg: cfg}
}

func (m *MailNotifier) Name() string {
	return "mail"
}

func (m *MailNotifier) Notify(ctx context.Context, match Match) error {
	if !m.cfg.Configured() {
		logger.Warn("No email credentials provided, skipping mail notification")
		return nil
	}

	to := m.cfg.To
	if to == "" {
		to = m.cfg.Username
	}

	msg := email.NewEmail()
	msg.From = fmt.Sprintf("dinescout <%s>", m.cfg.Username)
	msg.To = []string{to}
	msg.Subject = fmt.Sprintf("Found openings for %s on %s",
		match.Availability.Restaurant.Name, match.Date)
	msg.Text = []byte(mailBody(match))

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	err := msg.Send(addr, smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Server))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	logger.Info("Email notification sent")
	return nil
}

func mailBody(match Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found openings for %d people on %s at %s.\n\n",
		match.PartySize, match.Date, match.Availability.Restaurant.Name)
	for _, t := range match.Availability.CleanedTimes {
		fmt.Fprintf(&b, "  %s (%s)\n", t.Time, t.MealPeriod)
	}
	cfg := disney.ConfigFor(match.Resort)
	if match.Availability.Restaurant.URLFriendlyID != "" {
		fmt.Fprintf(&b, "\nReserve: %s/dine-res/restaurant/%s/\n",
			cfg.BaseURL, match.Availability.Restaurant.URLFriendlyID)
	}
	return b.String()
}
