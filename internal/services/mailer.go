package services

import (
	"fmt"
	"net/smtp"

	"github.com/eventflow-dev/eventflow/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Mailer sends transactional emails over SMTP. It is optional: when SMTP_HOST
// is unset every send is a logged no-op, so mail never becomes a hard
// dependency of registration.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

var defaultMailer *Mailer

// InitMailer installs the process-wide mailer from configuration.
func InitMailer(cfg *config.Config) {
	defaultMailer = &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}

	if defaultMailer.host == "" {
		logrus.Info("SMTP not configured, outgoing email disabled")
	}
}

func (m *Mailer) enabled() bool {
	return m != nil && m.host != ""
}

func (m *Mailer) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return e.Send(addr, auth)
}

// SendWelcome emails a new user. Failures are logged only; registration never
// depends on mail delivery.
func SendWelcome(to, name string) {
	if !defaultMailer.enabled() {
		logrus.WithField("to", to).Debug("Skipping welcome email, mailer disabled")
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour EventFlow account is ready. Sign in to start tracking your activity.\n\nThe EventFlow team\n",
		name,
	)

	if err := defaultMailer.send(to, "Welcome to EventFlow", body); err != nil {
		logrus.WithError(err).WithField("to", to).Warn("Failed to send welcome email")
	}
}
