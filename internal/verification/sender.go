package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Message is a code ready for delivery.
type Message struct {
	Purpose     enums.VerificationPurpose `json:"purpose"`
	Destination string                    `json:"destination"`
	Code        string                    `json:"code"`
	ExpiresAt   time.Time                 `json:"expires_at"`
}

// Sender delivers verification codes.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
}

// RedisSender publishes codes to a pub/sub channel consumed by the mailer.
type RedisSender struct {
	client  publisher
	channel string
}

func NewRedisSender(client publisher, channel string) (*RedisSender, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, fmt.Errorf("verification channel is required")
	}
	return &RedisSender{client: client, channel: channel}, nil
}

func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode verification message: %w", err)
	}
	if _, err := s.client.Publish(ctx, s.channel, string(raw)); err != nil {
		return fmt.Errorf("publish verification message: %w", err)
	}
	return nil
}
