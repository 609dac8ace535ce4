package repository

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSaveMerges(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_ = m.Save(ctx, "1", map[string]string{"theme": "dark"})
	_ = m.Save(ctx, "1", map[string]string{"itemsPerPage": "20"})

	got, _ := m.Load(ctx, "1")
	if got["theme"] != "dark" || got["itemsPerPage"] != "20" {
		t.Fatalf("got %v", got)
	}
	got["theme"] = "light"
	again, _ := m.Load(ctx, "1")
	if again["theme"] != "dark" {
		t.Fatal("Load must return a copy")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Put(ctx, "s", map[string]string{"token": "a"}, time.Minute)
	if got, _ := m.Get(ctx, "s"); got["token"] != "a" {
		t.Fatalf("got %v", got)
	}
	now = now.Add(2 * time.Minute)
	if got, _ := m.Get(ctx, "s"); len(got) != 0 {
		t.Fatalf("expired session still present: %v", got)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_ = m.Put(ctx, "s", map[string]string{"token": "a"}, 0)
	_ = m.Delete(ctx, "s")
	if got, _ := m.Get(ctx, "s"); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
