// Package dispatch is the delivery boundary between the matching engine and
// the outbound channels. The engine never interprets the settings payload;
// the dispatcher decodes the two delivery flags from it and fans a match
// list out to email and SMS, deduplicating contacts across recipients.
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/insiderwatch/insiderwatch/internal/domain"
	"go.uber.org/zap"
)

type EmailSender interface {
	Send(ctx context.Context, to string, trade domain.Trade) error
}

type SMSSender interface {
	Send(ctx context.Context, to string, trade domain.Trade) error
}

type deliveryPrefs struct {
	EmailNotification bool `json:"email_notification"`
	TextNotification  bool `json:"text_notification"`
}

type Dispatcher struct {
	email  EmailSender
	sms    SMSSender
	logger *zap.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, logger: logger}
}

// Dispatch delivers one trade to every recipient. Per-recipient delivery
// failures are logged and skipped; only cancellation aborts the fan-out.
func (d *Dispatcher) Dispatch(ctx context.Context, trade domain.Trade, results []domain.MatchResult) error {
	sentEmails := make(map[string]struct{})
	sentPhones := make(map[string]struct{})

	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return err
		}

		prefs := decodePrefs(result.Settings, d.logger)

		if prefs.EmailNotification && result.Email != "" {
			if _, dup := sentEmails[result.Email]; !dup {
				sentEmails[result.Email] = struct{}{}
				if err := d.email.Send(ctx, result.Email, trade); err != nil {
					d.logger.Warn("email delivery failed",
						zap.String("email", result.Email), zap.Error(err))
				}
			}
		}

		if prefs.TextNotification && result.Phone != "" {
			if _, dup := sentPhones[result.Phone]; !dup {
				sentPhones[result.Phone] = struct{}{}
				if err := d.sms.Send(ctx, result.Phone, trade); err != nil {
					d.logger.Warn("sms delivery failed",
						zap.String("phone", result.Phone), zap.Error(err))
				}
			}
		}
	}

	return nil
}

// decodePrefs is lenient: a payload without the flags, or one that is not an
// object at all, disables both channels rather than failing the fan-out.
func decodePrefs(settings json.RawMessage, logger *zap.Logger) deliveryPrefs {
	var prefs deliveryPrefs
	if len(settings) == 0 {
		return prefs
	}
	if err := json.Unmarshal(settings, &prefs); err != nil {
		logger.Warn("undecodable settings payload", zap.Error(err))
		return deliveryPrefs{}
	}
	return prefs
}
