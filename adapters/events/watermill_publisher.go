package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/agrostack/agrauth/core"
	"github.com/agrostack/agrauth/ports"
)

const (
	TopicCodeVerified = "auth.code_verified"
	TopicLogout       = "auth.logout"
)

// CodeVerifiedEvent announces a successfully verified code.
type CodeVerifiedEvent struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// LogoutEvent announces a revoked token.
type LogoutEvent struct {
	Subject string `json:"subject"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements EventPublisher over a watermill
// message.Publisher so other instances can react to auth state changes.
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishCodeVerified(ctx context.Context, otpType core.OTPType, identifier string) error {
	return p.publish(TopicCodeVerified, uuid.New().String(), CodeVerifiedEvent{
		Type:       string(otpType),
		Identifier: identifier,
	})
}

func (p *WatermillPublisher) PublishLogout(ctx context.Context, subject string, tokenID string) error {
	return p.publish(TopicLogout, tokenID, LogoutEvent{
		Subject: subject,
		TokenID: tokenID,
	})
}

func (p *WatermillPublisher) publish(topic, id string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.publisher.Publish(topic, message.NewMessage(id, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
