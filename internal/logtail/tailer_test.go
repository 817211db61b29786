package logtail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyra/proxylog/internal/logging"
)

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	if err := os.WriteFile(path, []byte("first\nsecond\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan string, 10)
	done := make(chan error, 1)
	go func() { done <- New(path, logging.Discard(), WithPoll(true)).Tail(ctx, out) }()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("third\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var got []string
	timeout := time.After(5 * time.Second)
	for len(got) < 3 {
		select {
		case l := <-out:
			got = append(got, l)
		case <-timeout:
			t.Fatalf("got %v before timeout", got)
		}
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Tail() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Tail did not return after cancel")
	}
}

func TestTailMissingFile(t *testing.T) {
	out := make(chan string)
	err := New(filepath.Join(t.TempDir(), "nope.log"), logging.Discard()).Tail(context.Background(), out)
	if err == nil {
		t.Fatal("Tail() on a missing file returned nil")
	}
}

func TestTailFromEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan string, 10)
	go func() { _ = New(path, logging.Discard(), WithPoll(true), FromEnd()).Tail(ctx, out) }()

	// Keep appending until the tailer has seeked and picks a line up.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case l := <-out:
			if l != "new" {
				t.Fatalf("first line = %q, want new", l)
			}
			return
		case <-tick.C:
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
			if err != nil {
				t.Fatal(err)
			}
			f.WriteString("new\n")
			f.Close()
		case <-deadline:
			t.Fatal("no line before timeout")
		}
	}
}
