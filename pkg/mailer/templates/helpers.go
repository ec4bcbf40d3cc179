package templates

import (
	"time"

	"github.com/obakengshepherd/InsureClaim/config"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04 UTC")
	}
}

func WithDetails(m map[string]string) Option {
	return func(d *EmailData) { d.Details = m }
}

// NewNotificationData fills the branding fields from config, then applies opts.
func NewNotificationData(cfg *config.Config, event, name, email, reference string, opts ...Option) EmailData {
	d := EmailData{
		Name:       name,
		Email:      email,
		Event:      event,
		Reference:  reference,
		AppName:    cfg.AppName,
		Company:    cfg.CompanyName,
		SupportURL: cfg.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
