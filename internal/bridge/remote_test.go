package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/platform"
)

func TestControllerRemote(t *testing.T) {
	loop := app.NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	d, err := platform.Resolve("tizen")
	if err != nil {
		t.Fatal(err)
	}
	host := make(chan app.HostEvent, 4)
	c, err := app.New(app.Options{
		Platform:   d,
		Store:      config.NewMemStore(),
		Dispatch:   loop.Dispatch,
		DeviceCode: "ABCD2345",
		OnHost:     func(ev app.HostEvent) { host <- ev },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = loop.Call(context.Background(), c.Close) }()

	remote := NewControllerRemote(c, loop.Dispatch)

	info, err := remote.DeviceInfo(ctx)
	if err != nil {
		t.Fatalf("DeviceInfo() error = %v", err)
	}
	if info.DeviceCode != "ABCD2345" || info.Platform != "tizen" || info.Brand != "Samsung" {
		t.Errorf("DeviceInfo() = %+v", info)
	}

	// BACK on the login screen asks the host to exit.
	remote.Back()
	select {
	case ev := <-host:
		if ev.Type != app.HostExit {
			t.Errorf("host event = %v, want %v", ev.Type, app.HostExit)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no host event after BACK")
	}

	remote.Key(app.KeyEvent{Code: 40, Pressed: true})
	remote.Key(app.KeyEvent{Code: 40})
	var focused string
	if err := loop.Call(ctx, func() { focused = c.Focused() }); err != nil {
		t.Fatal(err)
	}
	if focused == "" {
		t.Error("no element focused after DOWN")
	}
}
