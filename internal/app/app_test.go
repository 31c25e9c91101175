package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/pairing"
	"github.com/muurk/polfunbox/internal/platform"
	"github.com/muurk/polfunbox/internal/player"
	"github.com/muurk/polfunbox/internal/schedule"
	"github.com/muurk/polfunbox/internal/xtream"
)

var testStart = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

const (
	mockAccount = `{"user_info":{"username":"jan","auth":1,"status":"Active","exp_date":null,"active_cons":"0","max_connections":"2"},"server_info":{"url":"panel","port":"8080"}}`

	mockLiveCategories = `[
 {"category_id":"1","category_name":"Informacje"},
 {"category_id":2,"category_name":"Sport"},
 {"category_id":"9","category_name":"XXX Dorośli"}
]`
	mockLiveStreams = `[
 {"num":1,"name":"TVP Info","stream_id":101,"category_id":"1"},
 {"num":2,"name":"Polsat News","stream_id":"102","category_id":"1"},
 {"num":3,"name":"TVN24","stream_id":103,"category_id":1},
 {"num":4,"name":"Eurosport","stream_id":201,"category_id":"2"},
 {"num":5,"name":"Hot Channel","stream_id":901,"category_id":"9"}
]`
	mockVodCategories = `[{"category_id":"10","category_name":"Komedie"},{"category_id":"11","category_name":"Adult"}]`
	mockVodStreams    = `[
 {"name":"Miś","stream_id":501,"category_id":"10","rating_5based":4.5,"container_extension":"mkv"},
 {"name":"Seksmisja","stream_id":502,"category_id":"10","rating":"8.1","container_extension":"mp4"},
 {"name":"Late Night","stream_id":503,"category_id":"11","container_extension":"mp4"}
]`
	mockVodInfo = `{"info":{"name":"Miś","plot":"Komedia Barei","genre":"Komedia","year":"1981","duration":"01:51:00"},"movie_data":{"stream_id":501,"container_extension":"mkv"}}`

	mockSeriesCategories = `[{"category_id":"20","category_name":"Polskie"}]`
	mockSeries           = `[
 {"name":"Ranczo","series_id":701,"category_id":"20","cover":"r.jpg"},
 {"name":"Świat według Kiepskich","series_id":"702","category_id":"20"}
]`
	mockSeriesInfo = `{
 "info":{"name":"Ranczo","cover":"c.jpg","plot":"Wilkowyje","rating":8.4},
 "episodes":{"2":[{"id":"2001","episode_num":1,"title":"Powrót","container_extension":"mkv","season":2}],
             "1":[{"id":"1001","episode_num":"1","title":"Spadek","container_extension":"mp4","season":"1"},
                  {"id":"1002","episode_num":"2","title":"","season":"1"}]}
}`
)

// fakePanel serves player_api.php and the pairing endpoints.
type fakePanel struct {
	server *httptest.Server
	now    time.Time

	mu     sync.Mutex
	calls  map[string]int
	fail   map[string]int
	bodies map[string]string
}

func newFakePanel(t *testing.T) *fakePanel {
	t.Helper()
	p := &fakePanel{now: testStart, calls: make(map[string]int), fail: make(map[string]int), bodies: make(map[string]string)}
	p.server = httptest.NewServer(p)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePanel) URL() string { return p.server.URL }

// failWith makes every request for action answer with status.
func (p *fakePanel) failWith(action string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[action] = status
}

// serve replaces the canned response of action.
func (p *fakePanel) serve(action, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies[action] = body
}

func (p *fakePanel) count(action string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[action]
}

func (p *fakePanel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/config.php":
		fmt.Fprintf(w, `{"device_api_url":"%[1]s/device.php","manual_register_url":"%[1]s/register.php"}`, p.server.URL)
		return
	case "/device.php":
		_ = r.ParseForm()
		if r.PostForm.Get("device_code") != "ABCD2345" {
			fmt.Fprint(w, `{"success":false,"message":"Kod nie zarejestrowany"}`)
			return
		}
		fmt.Fprintf(w, `{"success":true,"server_url":"%s","username":"jan","password":"tajne"}`, p.server.URL)
		return
	case "/register.php":
		fmt.Fprint(w, `{"success":true}`)
		return
	case "/player_api.php":
	default:
		http.NotFound(w, r)
		return
	}

	action := r.URL.Query().Get("action")
	p.mu.Lock()
	p.calls[action]++
	status := p.fail[action]
	body, override := p.bodies[action]
	p.mu.Unlock()
	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.URL.Query().Get("password") != "tajne" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if override {
		fmt.Fprint(w, body)
		return
	}

	switch action {
	case "":
		fmt.Fprint(w, mockAccount)
	case "get_live_categories":
		fmt.Fprint(w, mockLiveCategories)
	case "get_live_streams":
		fmt.Fprint(w, mockLiveStreams)
	case "get_vod_categories":
		fmt.Fprint(w, mockVodCategories)
	case "get_vod_streams":
		fmt.Fprint(w, mockVodStreams)
	case "get_vod_info":
		fmt.Fprint(w, mockVodInfo)
	case "get_series_categories":
		fmt.Fprint(w, mockSeriesCategories)
	case "get_series":
		fmt.Fprint(w, mockSeries)
	case "get_series_info":
		fmt.Fprint(w, mockSeriesInfo)
	case "get_short_epg":
		now := p.now.Unix()
		fmt.Fprintf(w, `{"epg_listings":[
 {"title":"Wiadomości wieczorne","start_timestamp":"%d","stop_timestamp":"%d"},
 {"title":"Sport na żywo","start_timestamp":"%d","stop_timestamp":"%d"}]}`,
			now-1800, now+1800, now+1800, now+5400)
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

type harness struct {
	t       *testing.T
	c       *Controller
	clock   *schedule.ManualClock
	store   *config.MemStore
	profile *config.Profile
	panel   *fakePanel

	players []*player.Nop
	host    []HostEvent

	// deferGo queues background work in pending instead of running it.
	deferGo bool
	pending []func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		clock: schedule.NewManualClock(testStart),
		store: config.NewMemStore(),
		panel: newFakePanel(t),
	}
	h.profile = config.NewProfile(h.store)
	return h
}

// start builds the controller; a stored session logs it in.
func (h *harness) start() *Controller {
	h.t.Helper()
	d, err := platform.Resolve("vega")
	if err != nil {
		h.t.Fatalf("Resolve() error = %v", err)
	}

	c, err := New(Options{
		Platform: d,
		Store:    h.store,
		Clock:    h.clock,
		Dispatch: func(f func()) { f() },
		Go: func(f func()) {
			if h.deferGo {
				h.pending = append(h.pending, f)
				return
			}
			f()
		},
		LivePlayer: h.newPlayer,
		NewClient: func(creds xtream.Credentials) (*xtream.Client, error) {
			client, err := xtream.NewClient(creds)
			if err != nil {
				return nil, err
			}
			client.SetRetry(0, time.Millisecond)
			client.SetRateLimit(0, 0)
			return client, nil
		},
		Pairing: &pairing.Client{
			ConfigURL:  h.panel.URL() + "/config.php",
			HTTPClient: h.panel.server.Client(),
			Endpoints:  pairing.DefaultEndpoints(),
		},
		DeviceCode: "ABCD2345",
		Location:   time.UTC,
		OnHost:     func(ev HostEvent) { h.host = append(h.host, ev) },
	})
	if err != nil {
		h.t.Fatalf("New() error = %v", err)
	}
	h.c = c
	h.t.Cleanup(c.Close)

	ctx, cancel := context.WithCancel(context.Background())
	h.t.Cleanup(cancel)
	c.Start(ctx)
	return c
}

func (h *harness) newPlayer(on player.Handler) player.Player {
	p := player.NewNop(on)
	h.players = append(h.players, p)
	return p
}

// loggedIn stores a session for the fake panel and starts on the home
// screen.
func (h *harness) loggedIn() *Controller {
	h.t.Helper()
	if err := h.profile.SaveSession(h.creds()); err != nil {
		h.t.Fatalf("SaveSession() error = %v", err)
	}
	c := h.start()
	if c.Screen() != Home {
		h.t.Fatalf("Screen() after auto-login = %v, want home", c.Screen())
	}
	return c
}

func (h *harness) creds() xtream.Credentials {
	return xtream.Credentials{ServerURL: h.panel.URL(), Username: "jan", Password: "tajne"}
}

func (h *harness) withPIN(code string) {
	h.t.Helper()
	s := h.profile.Settings()
	s.PinCode, s.PinEnabled = code, true
	if err := h.profile.SaveSettings(s); err != nil {
		h.t.Fatalf("SaveSettings() error = %v", err)
	}
}

// runPending runs queued background work until none is left.
func (h *harness) runPending() {
	for len(h.pending) > 0 {
		f := h.pending[0]
		h.pending = h.pending[1:]
		f()
	}
}

func (h *harness) lastPlayer() *player.Nop {
	h.t.Helper()
	if len(h.players) == 0 {
		h.t.Fatal("no player was created")
	}
	return h.players[len(h.players)-1]
}

func (h *harness) press(a keymap.Action) Result {
	return h.c.PressAction(a)
}

func (h *harness) pressCode(code int) Result {
	return h.c.Press(code)
}

func (h *harness) digits(s string) {
	for _, r := range s {
		h.pressCode(keymap.DigitCode(int(r - '0')))
	}
}

func (h *harness) lastHost() HostEvent {
	h.t.Helper()
	if len(h.host) == 0 {
		h.t.Fatal("no host event was sent")
	}
	return h.host[len(h.host)-1]
}

func (h *harness) element(id string) (ElementView, bool) {
	for _, el := range h.c.Snapshot().Elements {
		if el.ID == id {
			return el, true
		}
	}
	return ElementView{}, false
}

func elementIDs(s Snapshot, prefix string) []string {
	var ids []string
	for _, el := range s.Elements {
		if strings.HasPrefix(el.ID, prefix) {
			ids = append(ids, el.ID)
		}
	}
	return ids
}
