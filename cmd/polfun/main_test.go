package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/xtream"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestKeysCommand(t *testing.T) {
	out, err := execute(t, "keys", "--platform", "tizen")
	if err != nil {
		t.Fatalf("keys error = %v", err)
	}
	for _, want := range []string{"tizen (Samsung)", "channel_up", "427, 33", "back", "27, 461, 10009, 8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestKeysUnknownPlatform(t *testing.T) {
	if _, err := execute(t, "keys", "--platform", "atari"); err == nil {
		t.Error("keys accepted an unknown platform")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "polfun ") {
		t.Errorf("version output = %q", out)
	}
}

func TestChannelsNeedsSession(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store.yaml")
	_, err := execute(t, "channels", "--platform", "vega", "--store", store)
	if !errors.Is(err, errNotLoggedIn) {
		t.Errorf("channels error = %v, want %v", err, errNotLoggedIn)
	}
}

func TestLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	store, err := config.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	profile := config.NewProfile(store)
	if err := profile.SaveSession(xtream.Credentials{ServerURL: "http://panel:8080", Username: "jan", Password: "x"}); err != nil {
		t.Fatal(err)
	}

	// No confirmation on stdin keeps the session.
	out, err := execute(t, "logout", "--store", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Log out?") {
		t.Errorf("logout did not ask for confirmation:\n%s", out)
	}
	if _, ok := reopen(t, path).Session(); !ok {
		t.Fatal("session removed without confirmation")
	}

	if _, err := execute(t, "logout", "--yes", "--store", path); err != nil {
		t.Fatal(err)
	}
	if _, ok := reopen(t, path).Session(); ok {
		t.Error("session still stored after logout --yes")
	}
	skipConfirm = false
}

func reopen(t *testing.T, path string) *config.Profile {
	t.Helper()
	store, err := config.OpenFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return config.NewProfile(store)
}
