package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/config"
	"github.com/vovakirdan/chatql-server/internal/store"
)

func TestNewRejectsUnknownDefaultAuthor(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultAuthor = "Nobody"
	disabledLogger := zerolog.New(nil)

	_, err := New(&cfg, &disabledLogger)
	if !errors.Is(err, store.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestAppServesGraphQL(t *testing.T) {
	cfg := config.Default()
	disabledLogger := zerolog.New(nil)

	application, err := New(&cfg, &disabledLogger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	resp, err := ts.Client().Post(ts.URL+"/graphql", "application/json",
		strings.NewReader(`{"query":"{ channel(name: \"PUBG\") { fullName membersCount } }"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	disabledLogger := zerolog.New(nil)

	application, err := New(&cfg, &disabledLogger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
