package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/config"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/registry"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			soldOutEvent(t, 0),
			soldOutEvent(t, 0),
		},
	}
	pub := &fakePublisher{errs: []error{errors.New("transient"), nil}}
	service := newTestService(t, repo, pub, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("unexpected failed rows: %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("unexpected published rows: %v", repo.published)
	}
}

func TestServicePublishesToAggregateChannel(t *testing.T) {
	event := soldOutEvent(t, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(pub.sent))
	}
	if pub.sent[0].channel != "mm:events:item" {
		t.Fatalf("unexpected channel %q", pub.sent[0].channel)
	}

	var msg registry.Message
	if err := json.Unmarshal(pub.sent[0].body, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.EventType != enums.EventItemSoldOut || msg.AggregateID != event.AggregateID {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestServiceMarksUnknownEventsDead(t *testing.T) {
	event := soldOutEvent(t, 0)
	event.EventType = enums.OutboxEventType("not_registered")
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{}
	service := newTestService(t, repo, pub, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("expected nothing published")
	}
	if len(repo.dead) != 1 || repo.dead[0] != event.ID {
		t.Fatalf("expected row marked dead, got %v", repo.dead)
	}
}

func TestServiceMarksDeadOnMaxAttempts(t *testing.T) {
	event := soldOutEvent(t, 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	pub := &fakePublisher{errs: []error{errors.New("transient")}}
	service := newTestService(t, repo, pub, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("expected no retryable failure, got %v", repo.failed)
	}
	if len(repo.dead) != 1 {
		t.Fatalf("expected row marked dead, got %v", repo.dead)
	}
}

func TestServiceReportsIdleBatch(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, nil)
	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("expected empty batch to report idle")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakePublisher{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := service.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestNextBackoffCaps(t *testing.T) {
	if got := nextBackoff(time.Second, time.Second, 3*time.Second); got != 2*time.Second {
		t.Fatalf("unexpected backoff %s", got)
	}
	if got := nextBackoff(2*time.Second, time.Second, 3*time.Second); got != 3*time.Second {
		t.Fatalf("expected cap, got %s", got)
	}
}

func newTestService(t *testing.T, repo outboxRepository, pub channelPublisher, override *config.OutboxConfig) *Service {
	t.Helper()
	cfg := config.OutboxConfig{BatchSize: 2, PollIntervalMS: 10, MaxAttempts: 5, ChannelPrefix: "mm:events"}
	if override != nil {
		cfg = *override
		cfg.ChannelPrefix = "mm:events"
	}
	reg, err := registry.NewEventRegistry(cfg.ChannelPrefix)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:         fakeDB{},
		Publisher:  pub,
		Repository: repo,
		Registry:   reg,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func soldOutEvent(tb testing.TB, attempts int) models.OutboxEvent {
	tb.Helper()
	itemID := uuid.New()
	data, err := json.Marshal(payloads.ItemSoldOutEvent{ItemID: itemID, SellerID: uuid.New()})
	if err != nil {
		tb.Fatalf("marshal payload: %v", err)
	}
	env, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventItemSoldOut,
		AggregateType: enums.AggregateItem,
		AggregateID:   itemID,
		Payload:       env,
		AttemptCount:  attempts,
	}
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	dead      []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkDeadTx(_ *gorm.DB, id uuid.UUID, _ int, _ error) error {
	f.dead = append(f.dead, id)
	return nil
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type sentMessage struct {
	channel string
	body    []byte
}

type fakePublisher struct {
	errs []error
	sent []sentMessage
}

func (f *fakePublisher) Ping(context.Context) error { return nil }

func (f *fakePublisher) Publish(_ context.Context, channel string, payload any) (int64, error) {
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err != nil {
		return 0, err
	}
	body, _ := payload.([]byte)
	f.sent = append(f.sent, sentMessage{channel: channel, body: body})
	return 1, nil
}
