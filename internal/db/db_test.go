package db

import (
	"context"
	"testing"
)

func TestConnectRejectsMalformedURL(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected error for malformed database url")
	}
}

func TestConnectFailsWhenServerUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Connect(ctx, "postgres://vidtube@127.0.0.1:1/vidtube?connect_timeout=1"); err == nil {
		t.Fatal("expected error when the database cannot be reached")
	}
}
