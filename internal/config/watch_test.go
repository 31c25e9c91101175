package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestWatchStore_ReloadsAfterExternalWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "store.yaml")
	watched, err := OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	// Make sure the directory exists before the watcher starts.
	if err := watched.Set("seed", "1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchStore(ctx, watched, func() { reloaded <- struct{}{} })
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	writer, _ := OpenFileStore(path)
	if err := writer.Set(KeyDeviceCode, "ZXCV2345"); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("store was not reloaded after external write")
	}
	if v, _ := watched.Get(KeyDeviceCode); v != "ZXCV2345" {
		t.Errorf("watched store Get(device_code) = %q", v)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("WatchStore() error = %v", err)
	}
	// Let a debounce timer that raced the cancel run out.
	time.Sleep(WatchDebounce + 100*time.Millisecond)
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "store.yaml"), func() {})
	if err == nil {
		t.Error("Watch() on a missing directory should fail")
	}
}
