// Package delivery contains collaborators that hand generated codes to
// the user. Real SMS and email providers plug in behind ports.Delivery;
// the log adapter stands in for them outside production.
package delivery

import (
	"context"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/internal/logger"
	"github.com/agrostack/agrauth/ports"
)

// LogDelivery writes codes to the log instead of sending them. Useful
// for development and for environments without provider credentials.
type LogDelivery struct{}

func NewLog() ports.Delivery {
	return &LogDelivery{}
}

func (d *LogDelivery) SendCode(ctx context.Context, channel core.DeliveryChannel, identifier, code string, otpType core.OTPType) error {
	logger.Log.WithFields(map[string]interface{}{
		"channel":    channel,
		"identifier": identifier,
		"type":       otpType,
	}).Infof("delivery: code %s", code)
	return nil
}
