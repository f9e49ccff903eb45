package runtime

import (
	"context"
	"testing"
	"time"
)

func TestNewApplicationDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")

	app, err := NewApplication()
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if app.db != nil {
		t.Fatal("expected in-memory stores without DATABASE_URL")
	}
	if app.rdb != nil {
		t.Fatal("expected no redis client without REDIS_ADDR")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	// Give the server a moment to start, then shut everything down.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
