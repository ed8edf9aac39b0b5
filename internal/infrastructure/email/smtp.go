// Package email delivers notification messages over SMTP.
package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/frankincense-labs/cx-management/internal/application/notification"
	"github.com/frankincense-labs/cx-management/internal/shared/config"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

var _ notification.Mailer = (*SMTPMailer)(nil)

type SMTPMailer struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

// NewMailer returns an SMTP mailer when email is enabled and a logging
// mailer otherwise.
func NewMailer(cfg config.EmailConfig, log logger.Interface) notification.Mailer {
	if !cfg.Enabled {
		log.Infow("email disabled, notifications will only be logged")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
	})
}

// Send dials, delivers and hangs up. gomail cannot be interrupted, so a
// cancelled ctx only stops the wait.
func (s *SMTPMailer) Send(ctx context.Context, msg notification.Message) error {
	m := s.buildMessage(msg)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}
}

func (s *SMTPMailer) buildMessage(msg notification.Message) *gomail.Message {
	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	return m
}
