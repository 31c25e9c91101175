package bridge

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/muurk/polfunbox/internal/app"
	"go.uber.org/goleak"
)

type fakeRemote struct {
	keys  chan app.KeyEvent
	backs chan struct{}
	info  DeviceInfo
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		keys:  make(chan app.KeyEvent, 16),
		backs: make(chan struct{}, 4),
		info:  DeviceInfo{DeviceCode: "ABCD2345", Platform: "vega", Brand: "Amazon Fire TV"},
	}
}

func (f *fakeRemote) Key(ev app.KeyEvent) { f.keys <- ev }
func (f *fakeRemote) Back()               { f.backs <- struct{}{} }

func (f *fakeRemote) DeviceInfo(context.Context) (DeviceInfo, error) {
	return f.info, nil
}

func startBridge(t *testing.T) (*Server, *fakeRemote, *httptest.Server) {
	t.Helper()
	remote := newFakeRemote()
	srv := New(Config{}, remote)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		ts.Close()
	})
	return srv, remote, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + RemotePath
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg string) {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
}

func readJSON(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var got map[string]any
	if err := ws.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return got
}

func nextKey(t *testing.T, f *fakeRemote) app.KeyEvent {
	t.Helper()
	select {
	case ev := <-f.keys:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no key event forwarded")
	}
	return app.KeyEvent{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 5s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKeyMessagesForwarded(t *testing.T) {
	_, remote, ts := startBridge(t)
	ws := dial(t, ts)

	send(t, ws, `{"type":"KEY","keyCode":39,"action":"down"}`)
	send(t, ws, `{"type":"TV_EVENT","eventType":"select"}`)

	var got []app.KeyEvent
	for range 3 {
		got = append(got, nextKey(t, remote))
	}
	want := []app.KeyEvent{
		{Code: 39, Pressed: true},
		{Code: 13, Pressed: true},
		{Code: 13},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forwarded keys mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedMessagesIgnored(t *testing.T) {
	_, remote, ts := startBridge(t)
	ws := dial(t, ts)

	send(t, ws, `{not json`)
	send(t, ws, `{"type":"WHATEVER"}`)
	send(t, ws, `{"type":"TV_EVENT","eventType":"menu"}`)
	send(t, ws, `{"type":"BACK_PRESSED"}`)

	select {
	case <-remote.backs:
	case <-time.After(5 * time.Second):
		t.Fatal("BACK_PRESSED after malformed input was not forwarded")
	}
	select {
	case ev := <-remote.keys:
		t.Errorf("unexpected key %+v", ev)
	default:
	}
}

func TestDeviceInfoReply(t *testing.T) {
	_, _, ts := startBridge(t)
	ws := dial(t, ts)

	send(t, ws, `{"type":"GET_DEVICE_INFO"}`)

	want := map[string]any{
		"type":       "DEVICE_INFO",
		"deviceCode": "ABCD2345",
		"platform":   "vega",
		"brand":      "Amazon Fire TV",
	}
	if diff := cmp.Diff(want, readJSON(t, ws)); diff != "" {
		t.Errorf("DEVICE_INFO mismatch (-want +got):\n%s", diff)
	}
}

func TestNotifyBroadcasts(t *testing.T) {
	srv, _, ts := startBridge(t)
	a := dial(t, ts)
	b := dial(t, ts)
	waitFor(t, func() bool { return srv.ActiveConnections() == 2 })

	srv.Notify(app.HostEvent{Type: app.HostNavigation, Screen: app.Movies, CanGoBack: true})
	srv.Notify(app.HostEvent{Type: app.HostExit})

	for _, ws := range []*websocket.Conn{a, b} {
		nav := readJSON(t, ws)
		if nav["type"] != TypeNavigationState || nav["screen"] != "movies" || nav["canGoBack"] != true {
			t.Errorf("navigation message = %v", nav)
		}
		if exit := readJSON(t, ws); exit["type"] != TypeExitApp {
			t.Errorf("exit message = %v", exit)
		}
	}
}

func TestHealth(t *testing.T) {
	srv, _, ts := startBridge(t)
	dial(t, ts)
	waitFor(t, func() bool { return srv.ActiveConnections() == 1 })

	resp, err := http.Get(ts.URL + HealthPath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got struct {
		Status      string `json:"status"`
		Connections int    `json:"connections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "ok" || got.Connections != 1 {
		t.Errorf("health = %+v", got)
	}
}

func TestShutdownClosesRemotes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	remote := newFakeRemote()
	srv := New(Config{}, remote)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + RemotePath
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	waitFor(t, func() bool { return srv.ActiveConnections() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going-away close", err)
	}
	if n := srv.ActiveConnections(); n != 0 {
		t.Errorf("ActiveConnections() = %d after shutdown", n)
	}

	// New remotes are refused.
	if _, resp, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Error("Dial() after shutdown succeeded")
	} else if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status after shutdown = %d", resp.StatusCode)
	}
}

// stallConn blocks writes once stalled until release is closed.
type stallConn struct {
	net.Conn
	stalled atomic.Bool
	release <-chan struct{}
	blocked chan struct{}
	once    sync.Once
}

func (c *stallConn) Write(p []byte) (int, error) {
	if !c.stalled.Load() {
		return c.Conn.Write(p)
	}
	c.once.Do(func() { close(c.blocked) })
	<-c.release
	return 0, net.ErrClosed
}

type stallListener struct {
	net.Listener
	release chan struct{}
	conns   chan *stallConn
}

func (l *stallListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	sc := &stallConn{Conn: c, release: l.release, blocked: make(chan struct{})}
	select {
	case l.conns <- sc:
	default:
	}
	return sc, nil
}

func TestShutdownClosesRemotesOutsideLock(t *testing.T) {
	srv := New(Config{}, newFakeRemote())
	ts := httptest.NewUnstartedServer(srv.Handler())
	ln := &stallListener{Listener: ts.Listener, release: make(chan struct{}), conns: make(chan *stallConn, 4)}
	ts.Listener = ln
	ts.Start()
	t.Cleanup(ts.Close)
	release := sync.OnceFunc(func() { close(ln.release) })
	t.Cleanup(release)

	dial(t, ts)
	waitFor(t, func() bool { return srv.ActiveConnections() == 1 })
	conn := <-ln.conns
	conn.stalled.Store(true)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- srv.Shutdown(ctx)
	}()

	select {
	case <-conn.blocked:
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown never wrote to the remote")
	}

	// The close frame is stuck; the server must stay usable.
	got := make(chan int, 1)
	go func() { got <- srv.ActiveConnections() }()
	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("ActiveConnections() blocked while a remote was being closed")
	}

	release()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Shutdown() did not return")
	}
}

func TestServeStopsWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := New(Config{}, newFakeRemote())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	waitFor(t, func() bool { return srv.Addr() != nil })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestConfigAddr(t *testing.T) {
	if got := (Config{}).Addr(); got != ":8765" {
		t.Errorf("Addr() = %q", got)
	}
	if got := (Config{Host: "127.0.0.1", Port: 9000}).Addr(); got != "127.0.0.1:9000" {
		t.Errorf("Addr() = %q", got)
	}
}
