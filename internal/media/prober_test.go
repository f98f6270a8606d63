package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProberDuration(t *testing.T) {
	prober := NewProber("ffprobe", time.Second)
	prober.Run = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		wantArgs := []string{"-v", "error", "-show_entries", "format=duration", "-of", "json", "/tmp/clip.mp4"}
		if binary != "ffprobe" {
			t.Fatalf("unexpected binary %q", binary)
		}
		if len(args) != len(wantArgs) {
			t.Fatalf("unexpected args length: got %d want %d", len(args), len(wantArgs))
		}
		for i, arg := range wantArgs {
			if args[i] != arg {
				t.Fatalf("unexpected arg at %d: got %q want %q", i, args[i], arg)
			}
		}
		return []byte(`{"format":{"duration":"12.480000"}}`), nil
	}

	got, err := prober.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("Duration() error = %v", err)
	}
	if got != 12.48 {
		t.Fatalf("expected 12.48 seconds, got %v", got)
	}
}

func TestProberDurationFailures(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{name: "command error", err: errors.New("exit status 1")},
		{name: "bad json", out: `not-json`},
		{name: "missing duration", out: `{"format":{}}`},
		{name: "non numeric", out: `{"format":{"duration":"N/A"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prober := NewProber("", 0)
			prober.Run = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
				return []byte(tc.out), tc.err
			}
			if _, err := prober.Duration(context.Background(), "clip.mp4"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestProberDefaults(t *testing.T) {
	prober := NewProber(" ", -time.Second)
	if prober.Binary != "ffprobe" {
		t.Fatalf("expected default binary, got %q", prober.Binary)
	}
	if prober.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout, got %v", prober.Timeout)
	}
}

func TestNilProber(t *testing.T) {
	var prober *Prober
	if _, err := prober.Duration(context.Background(), "clip.mp4"); !errors.Is(err, ErrProberUnavailable) {
		t.Fatalf("expected ErrProberUnavailable, got %v", err)
	}
}
