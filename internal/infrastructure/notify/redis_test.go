package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"material-tracker/internal/domain/notification"
	"material-tracker/internal/domain/transaction"
)

func newBus(t *testing.T) (*RedisBus, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBus(rdb, time.Hour, nil), mr
}

func TestRedisBus_PublishSubscribe(t *testing.T) {
	bus, _ := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := notification.Event{
		Kind:          notification.KindNewRequest,
		TransactionID: "tx-1",
		Type:          transaction.TypeTake,
		WorkerName:    "Budi",
		WorkerID:      "W-1",
		Materials:     []string{"Cement"},
	}
	if err := bus.Publish(ctx, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-ch:
		if got.TransactionID != want.TransactionID || got.Kind != want.Kind || got.Materials[0] != "Cement" {
			t.Fatalf("got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should close after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestRedisBus_Seen(t *testing.T) {
	bus, mr := newBus(t)
	ctx := context.Background()

	seen, err := bus.Seen(ctx, "worker:W-1:Budi")
	if err != nil || len(seen) != 0 {
		t.Fatalf("empty Seen = %v, %v", seen, err)
	}

	if err := bus.MarkSeen(ctx, "worker:W-1:Budi", []string{"a", "b"}); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := bus.MarkSeen(ctx, "worker:W-1:Budi", nil); err != nil {
		t.Fatalf("MarkSeen(nil): %v", err)
	}

	seen, err = bus.Seen(ctx, "worker:W-1:Budi")
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if _, ok := seen["a"]; !ok || len(seen) != 2 {
		t.Fatalf("seen = %v", seen)
	}
	if ttl := mr.TTL(seenKey("worker:W-1:Budi")); ttl != time.Hour {
		t.Fatalf("TTL = %v", ttl)
	}
}
