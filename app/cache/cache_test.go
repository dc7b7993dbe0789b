package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	c, err := NewCache(context.Background(), mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestCalendarRoundTrip(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)
	ctx := context.Background()

	calendar, err := c.GetCalendar(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if calendar != nil {
		t.Fatalf("Expected cache miss, got %+v", calendar)
	}

	if err := c.SetCalendar(ctx, "acme", "<rss/>", 3); err != nil {
		t.Fatal(err)
	}

	calendar, err = c.GetCalendar(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if calendar == nil {
		t.Fatal("Expected cache hit")
	}
	if calendar.Content != "<rss/>" {
		t.Errorf("Expected content '<rss/>', got '%s'", calendar.Content)
	}
	if calendar.Rows != 3 {
		t.Errorf("Expected 3 rows, got %d", calendar.Rows)
	}
	if calendar.CachedAt.IsZero() {
		t.Error("Expected cached_at to be set")
	}
}

func TestCalendarExpires(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.SetCalendar(ctx, "acme", "<rss/>", 1); err != nil {
		t.Fatal(err)
	}

	if ttl := mr.TTL(calendarKey("acme")); ttl != time.Minute {
		t.Errorf("Expected TTL 1m, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)

	calendar, err := c.GetCalendar(ctx, "acme")
	if err != nil {
		t.Fatal(err)
	}
	if calendar != nil {
		t.Error("Expected expired entry to be a miss")
	}
}

func TestInvalidateCalendar(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.SetCalendar(ctx, "acme", "<rss/>", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCalendar(ctx, "other", "<rss/>", 1); err != nil {
		t.Fatal(err)
	}

	if err := c.InvalidateCalendar(ctx, "acme"); err != nil {
		t.Fatal(err)
	}

	if mr.Exists(calendarKey("acme")) {
		t.Error("Expected acme calendar to be removed")
	}
	if !mr.Exists(calendarKey("other")) {
		t.Error("Expected other calendar to be kept")
	}
}

func TestInvalidEntryIsMiss(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)

	if err := mr.Set(calendarKey("acme"), "not json"); err != nil {
		t.Fatal(err)
	}

	calendar, err := c.GetCalendar(context.Background(), "acme")
	if err != nil {
		t.Fatal(err)
	}
	if calendar != nil {
		t.Errorf("Expected miss for invalid entry, got %+v", calendar)
	}
	if mr.Exists(calendarKey("acme")) {
		t.Error("Expected invalid entry to be deleted")
	}
}

func TestHealth(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	health := c.Health(ctx)
	if health["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", health["status"])
	}

	mr.Close()

	health = c.Health(ctx)
	if health["status"] != "unhealthy" {
		t.Errorf("Expected unhealthy status after shutdown, got %v", health["status"])
	}
}

func TestNewCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewCache(context.Background(), addr, time.Minute); err == nil {
		t.Error("Expected error connecting to a closed server")
	}
}
