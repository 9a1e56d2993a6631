package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/iho/splitledger/internal/domain"
)

func TestStreamPublisherAppendsEvent(t *testing.T) {
	client, _ := newTestRedisClient(t)

	publisher := NewStreamPublisher(client, "splitledger:events", 0)
	ctx := context.Background()

	event := &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateType: domain.AggregateTypeTransaction,
		AggregateID:   "tx-1",
		EventType:     domain.EventTypeSettlementCreated,
		Payload:       map[string]any{"amount": "25.00"},
		CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := publisher.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	entries, err := client.XRange(ctx, "splitledger:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(entries))
	}

	values := entries[0].Values
	if values["event_id"] != "evt-1" || values["event_type"] != domain.EventTypeSettlementCreated {
		t.Fatalf("unexpected entry: %+v", values)
	}
	if values["created_at"] != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected created_at %v", values["created_at"])
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(values["payload"].(string)), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload["amount"] != "25.00" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestStreamPublisherCapsLength(t *testing.T) {
	client, _ := newTestRedisClient(t)

	publisher := NewStreamPublisher(client, "capped", 2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := publisher.Publish(ctx, &domain.OutboxEvent{ID: id, EventType: domain.EventTypeExpenseCreated}); err != nil {
			t.Fatalf("publish %s failed: %v", id, err)
		}
	}

	n, err := client.XLen(ctx, "capped").Result()
	if err != nil {
		t.Fatalf("xlen failed: %v", err)
	}
	if n > 4 || n < 2 {
		t.Fatalf("unexpected stream length %d", n)
	}
}

func TestStreamPublisherRedisDown(t *testing.T) {
	client, mr := newTestRedisClient(t)

	mr.Close()

	err := NewStreamPublisher(client, "s", 0).Publish(context.Background(), &domain.OutboxEvent{ID: "x"})
	if err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
