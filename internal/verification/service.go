// Package verification issues and checks short numeric codes sent to a user's
// email or phone. Codes live in Redis with a TTL and a bounded attempt counter.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
	"github.com/angelmondragon/minimart-backend/pkg/security"
)

const codeDigits = 6

type codeStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DelIfEquals(ctx context.Context, key, value string, extra ...string) (bool, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	VerificationCodeKey(purpose, destination string) string
	VerificationAttemptsKey(purpose, destination string) string
}

// Service issues and checks verification codes.
type Service interface {
	Issue(ctx context.Context, purpose enums.VerificationPurpose, destination string) error
	Verify(ctx context.Context, purpose enums.VerificationPurpose, destination, code string) error
}

type service struct {
	store       codeStore
	sender      Sender
	ttl         time.Duration
	maxAttempts int64
	logg        *logger.Logger
	generate    func(int) (string, error)
}

// NewService wires the Redis-backed code store and the delivery sender.
func NewService(store codeStore, sender Sender, cfg config.VerificationConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("code store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	if cfg.CodeTTL <= 0 {
		return nil, fmt.Errorf("verification code ttl must be positive")
	}
	maxAttempts := int64(cfg.MaxAttempts)
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &service{
		store:       store,
		sender:      sender,
		ttl:         cfg.CodeTTL,
		maxAttempts: maxAttempts,
		logg:        logg,
		generate:    security.GenerateNumericCode,
	}, nil
}

// Issue stores a fresh code, resetting the attempt counter, and hands it to
// the sender.
func (s *service) Issue(ctx context.Context, purpose enums.VerificationPurpose, destination string) error {
	destination, err := normalize(purpose, destination)
	if err != nil {
		return err
	}
	code, err := s.generate(codeDigits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}

	codeKey := s.store.VerificationCodeKey(string(purpose), destination)
	attemptsKey := s.store.VerificationAttemptsKey(string(purpose), destination)
	if err := s.store.Set(ctx, codeKey, code, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store verification code")
	}
	if err := s.store.Del(ctx, attemptsKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset verification attempts")
	}

	msg := Message{
		Purpose:     purpose,
		Destination: destination,
		Code:        code,
		ExpiresAt:   time.Now().UTC().Add(s.ttl),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deliver verification code")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "purpose", string(purpose)), "verification code issued")
	}
	return nil
}

// Verify checks code against the stored value. A matching code is consumed.
// Every mismatch counts toward the attempt limit; once it is reached the code
// is discarded and a new one must be issued.
func (s *service) Verify(ctx context.Context, purpose enums.VerificationPurpose, destination, code string) error {
	destination, err := normalize(purpose, destination)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "verification code is required")
	}

	codeKey := s.store.VerificationCodeKey(string(purpose), destination)
	attemptsKey := s.store.VerificationAttemptsKey(string(purpose), destination)

	stored, err := s.store.Get(ctx, codeKey)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return pkgerrors.New(pkgerrors.CodeValidation, "verification code expired or not issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load verification code")
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		// only one of several concurrent matches may consume the code
		consumed, err := s.store.DelIfEquals(ctx, codeKey, stored, attemptsKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume verification code")
		}
		if !consumed {
			return pkgerrors.New(pkgerrors.CodeValidation, "verification code expired or not issued")
		}
		return nil
	}

	attempts, err := s.store.IncrWithTTL(ctx, attemptsKey, s.ttl)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count verification attempts")
	}
	if attempts >= s.maxAttempts {
		if err := s.store.Del(ctx, codeKey, attemptsKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard verification code")
		}
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many invalid verification attempts")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid verification code").
		WithDetails(map[string]any{"remaining_attempts": s.maxAttempts - attempts})
}

func normalize(purpose enums.VerificationPurpose, destination string) (string, error) {
	if !purpose.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid verification purpose")
	}
	destination = strings.ToLower(strings.TrimSpace(destination))
	if destination == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "destination is required")
	}
	return destination, nil
}
