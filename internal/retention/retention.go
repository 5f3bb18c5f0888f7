package retention

import (
	"time"

	"github.com/eventflow-dev/eventflow/db"
	"github.com/eventflow-dev/eventflow/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Purger deletes audit events older than the configured retention window on
// a nightly schedule. A non-positive window disables purging entirely.
type Purger struct {
	days int
	cron *cron.Cron
}

func NewPurger(days int) *Purger {
	return &Purger{days: days}
}

func (p *Purger) Start() error {
	if p.days <= 0 {
		logrus.Info("Event retention disabled")
		return nil
	}

	p.cron = cron.New()

	if _, err := p.cron.AddFunc("0 3 * * *", p.purge); err != nil {
		return err
	}

	p.cron.Start()
	logrus.WithField("days", p.days).Info("Event retention scheduled")
	return nil
}

func (p *Purger) Stop() {
	if p.cron != nil {
		p.cron.Stop()
	}
}

func (p *Purger) purge() {
	cutoff := time.Now().AddDate(0, 0, -p.days)

	result := db.DB.Where("created_at < ?", cutoff).Delete(&models.Event{})

	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to purge expired events")
		return
	}

	logrus.WithFields(logrus.Fields{
		"deleted": result.RowsAffected,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Purged expired events")
}
