package libs

import (
	"gopkg.in/gomail.v2"

	"storefront/config"
)

// NewMailer returns nil when no SMTP host or recipient is configured.
func NewMailer(cfg *config.Config) *gomail.Dialer {
	if cfg.SMTPHost == "" || cfg.OrderEmailTo == "" {
		return nil
	}
	return gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
}
