package app

import (
	"context"
	"sync"
	"time"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/epg"
	"github.com/muurk/polfunbox/internal/focus"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/pairing"
	"github.com/muurk/polfunbox/internal/pin"
	"github.com/muurk/polfunbox/internal/platform"
	"github.com/muurk/polfunbox/internal/player"
	"github.com/muurk/polfunbox/internal/schedule"
	"github.com/muurk/polfunbox/internal/xtream"
	"go.uber.org/zap"
)

// Timing of the remote-control behaviours.
const (
	LongPressDelay        = 1000 * time.Millisecond
	DoubleSelectWindow    = 1500 * time.Millisecond
	EPGRefreshInterval    = 30 * time.Second
	ControlsHideDelay     = 5 * time.Second
	FullscreenEPGDuration = 5 * time.Second
	AlertDuration         = 5 * time.Second
	PINSubmitDelay        = 200 * time.Millisecond
	FavoritesRefreshDelay = 500 * time.Millisecond
	SeekStep              = 10 * time.Second
)

// Options configure a Controller. Zero values get working defaults except
// Store, which is required.
type Options struct {
	Platform platform.Descriptor

	// Keys overrides the platform's key table.
	Keys *keymap.Table

	Store config.Store

	Clock schedule.Clock

	// Dispatch queues a function onto the event loop. Nil runs it inline,
	// which is only correct when Go is inline too.
	Dispatch func(func())

	// Go runs blocking work. Nil starts a goroutine.
	Go func(func())

	LivePlayer player.Factory
	VodPlayer  player.Factory

	// NewClient builds the panel client for a session.
	NewClient func(xtream.Credentials) (*xtream.Client, error)

	Pairing *pairing.Client

	// DeviceCode overrides the stored or derived pairing code.
	DeviceCode string

	// Location is the zone EPG times are read in.
	Location *time.Location

	// OnHost receives navigation and exit notifications.
	OnHost func(HostEvent)
}

// Alert types.
const (
	AlertSuccess = "success"
	AlertError   = "error"
	AlertWarning = "warning"
	AlertInfo    = "info"
)

// Alert is a transient notification.
type Alert struct {
	Type    string
	Message string
}

type playerKind int

const (
	liveKind playerKind = iota
	vodKind
)

// appState is everything that changes while the client runs.
type appState struct {
	screen    Screen
	focus     string
	lastFocus string
	// viewports holds the scroll state of each scrolled group.
	viewports map[string]focus.Viewport

	fullscreen bool
	fsEPG      bool
	overlay    *overlayState
	pin        *pin.Session
	search     *searchState
	alert      *Alert
	editing    string
	debug      bool
	keyTrail   []keymap.Action
	debugLog   []string

	// live TV
	liveCats   []xtream.Category
	allLive    []xtream.LiveStream
	liveCat    string
	channels   []xtream.LiveStream
	channel    string
	lastSelect string
	lastAt     time.Time
	programs   []epg.Program
	epg        epg.Display
	livePaused bool
	liveLoaded bool
	press      longPress

	// movies
	vodCats   []xtream.Category
	allMovies []xtream.VodStream
	vodCat    string
	movies    []xtream.VodStream
	movie     *movieState

	// series
	seriesCats  []xtream.Category
	allSeries   []xtream.Series
	seriesCat   string
	seriesList  []xtream.Series
	series      *seriesState
	homeLoading bool

	account  *xtream.AccountInfo
	settings config.Settings
	draft    config.Settings
	login    loginForm
	loading  bool
}

type longPress struct {
	target string
	armed  bool
	fired  bool
}

// Controller is the client's state machine. See the package documentation
// for its threading rules.
type Controller struct {
	opts    Options
	keys    *keymap.Table
	profile *config.Profile
	sched   *schedule.Scheduler
	gate    *pin.Gate
	guard   *staleGuard
	reg     *focus.Registry
	views   map[string]ElementView

	ctx    context.Context
	cancel context.CancelFunc

	client *xtream.Client

	// pairingMu serialises calls into the pairing client, whose endpoints
	// FetchConfig rewrites.
	pairingMu sync.Mutex

	live      player.Player
	liveGen   uint64
	vod       player.Player
	vodGen    uint64
	deviceKey string

	st appState
}

// New builds a controller on the login screen. Call Start to resume a
// stored session.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		opts.Store = config.NewMemStore()
	}
	if opts.Platform.Name == "" {
		d, err := platform.Resolve("")
		if err != nil {
			return nil, err
		}
		opts.Platform = d
	}
	keys := opts.Keys
	if keys == nil {
		k, err := opts.Platform.Keys("")
		if err != nil {
			return nil, err
		}
		keys = k
	}
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock{}
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.Go == nil {
		opts.Go = func(f func()) { go f() }
	}
	if opts.LivePlayer == nil {
		opts.LivePlayer = player.NopFactory
	}
	if opts.VodPlayer == nil {
		opts.VodPlayer = opts.LivePlayer
	}
	if opts.NewClient == nil {
		opts.NewClient = xtream.NewClient
	}
	if opts.Pairing == nil {
		opts.Pairing = pairing.NewClient()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	c := &Controller{
		opts:    opts,
		keys:    keys,
		profile: config.NewProfile(opts.Store),
		sched:   schedule.New(opts.Clock, opts.Dispatch),
		gate:    pin.NewGate(nil),
		guard:   newStaleGuard(),
		reg:     focus.NewRegistry(),
		views:   make(map[string]ElementView),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.st.screen = Login
	c.st.settings = c.profile.Settings()
	c.deviceKey = c.resolveDeviceCode()
	c.prefillLogin()
	c.relayout()

	logging.Info("Controller created",
		zap.String("platform", opts.Platform.Name),
		zap.String("key_table", keys.Name),
		zap.String("device_code", c.deviceKey))
	return c, nil
}

// Start fetches the pairing configuration and logs in with the stored
// session when there is one. ctx bounds every request the controller makes.
func (c *Controller) Start(ctx context.Context) {
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(ctx)

	pctx := c.ctx
	c.opts.Go(func() {
		c.pairingMu.Lock()
		defer c.pairingMu.Unlock()
		_, _ = c.opts.Pairing.FetchConfig(pctx)
	})

	c.autoLogin()
}

// Close stops timers and players and cancels outstanding requests.
// Players are destroyed before Close returns.
func (c *Controller) Close() {
	c.sched.CancelAll()
	live, vod := c.live, c.vod
	c.live, c.vod = nil, nil
	c.liveGen++
	c.vodGen++
	c.st.overlay = nil
	c.stopLive()
	c.cancel()
	for _, p := range []player.Player{live, vod} {
		if p == nil {
			continue
		}
		if err := p.Destroy(); err != nil {
			logging.Warn("Player destroy failed", zap.Error(err))
		}
	}
}

// Scheduler exposes the controller's timers to front ends that arm their
// own tasks (the terminal's synthetic key release) on the same clock.
func (c *Controller) Scheduler() *schedule.Scheduler { return c.sched }

// Keys returns the key table in use.
func (c *Controller) Keys() *keymap.Table { return c.keys }

// Screen returns the active screen.
func (c *Controller) Screen() Screen { return c.st.screen }

// Focused returns the id of the focused element.
func (c *Controller) Focused() string { return c.st.focus }

// DeviceCode is the code shown for pairing.
func (c *Controller) DeviceCode() string { return c.deviceKey }

// Platform returns the injected platform descriptor.
func (c *Controller) Platform() platform.Descriptor { return c.opts.Platform }

// CanGoBack reports whether BACK would stay inside the application.
func (c *Controller) CanGoBack() bool {
	if c.st.pin != nil || c.st.search != nil || c.st.fullscreen || c.st.overlay != nil {
		return true
	}
	return c.st.screen != Home && c.st.screen != Login
}

func (c *Controller) now() time.Time { return c.sched.Now() }

func (c *Controller) resolveDeviceCode() string {
	if c.opts.DeviceCode != "" {
		c.storeDeviceCode(c.opts.DeviceCode)
		return c.opts.DeviceCode
	}
	if code, ok := c.profile.DeviceCode(); ok && pairing.ValidCode(code) {
		return code
	}
	code := pairing.FingerprintCode(pairing.HostFingerprint()...)
	c.storeDeviceCode(code)
	return code
}

func (c *Controller) storeDeviceCode(code string) {
	if err := c.profile.SetDeviceCode(code); err != nil {
		logging.Warn("Failed to store device code", zap.Error(err))
	}
}

func (c *Controller) notifyHost(t HostEventType) {
	if c.opts.OnHost == nil {
		return
	}
	c.opts.OnHost(HostEvent{Type: t, Screen: c.st.screen, CanGoBack: c.CanGoBack()})
}

// showAlert replaces the current alert and arms its expiry.
func (c *Controller) showAlert(kind, message string) {
	c.st.alert = &Alert{Type: kind, Message: message}
	logging.Debug("Alert", zap.String("type", kind), zap.String("message", message))
	c.sched.After(schedule.TaskAlert, AlertDuration, func() {
		c.st.alert = nil
	})
}

// DismissAlert clears the alert early.
func (c *Controller) DismissAlert() {
	c.st.alert = nil
	c.sched.Cancel(schedule.TaskAlert)
}

// control runs a player command off the event loop.
func (c *Controller) control(p player.Player, name string, cmd func(player.Player) error) {
	if p == nil {
		return
	}
	c.opts.Go(func() {
		if err := cmd(p); err != nil {
			logging.Warn("Player command failed", zap.String("command", name), zap.Error(err))
		}
	})
}

// playerHandler routes events of one player instance onto the loop. Events
// from a replaced or destroyed instance are dropped by generation.
func (c *Controller) playerHandler(kind playerKind, gen uint64) player.Handler {
	return func(ev player.Event) {
		c.opts.Dispatch(func() { c.onPlayerEvent(kind, gen, ev) })
	}
}

func (c *Controller) onPlayerEvent(kind playerKind, gen uint64, ev player.Event) {
	switch kind {
	case liveKind:
		if c.live == nil || gen != c.liveGen {
			return
		}
		c.onLiveEvent(ev)
	case vodKind:
		if c.vod == nil || gen != c.vodGen {
			return
		}
		c.onVodEvent(ev)
	}
}

func (c *Controller) loadInto(kind playerKind, p player.Player, gen uint64, url string) {
	ctx := c.ctx
	logging.Info("Loading stream", zap.String("url", logging.RedactURL(url)))
	c.opts.Go(func() {
		err := p.Load(ctx, url)
		if err == nil {
			return
		}
		c.opts.Dispatch(func() {
			c.onPlayerEvent(kind, gen, player.Event{Type: player.EventError, Err: err, Fatal: true})
		})
	})
}

// destroyPlayer releases p off the event loop.
func (c *Controller) destroyPlayer(p player.Player) {
	if p == nil {
		return
	}
	c.opts.Go(func() {
		if err := p.Destroy(); err != nil {
			logging.Warn("Player destroy failed", zap.Error(err))
		}
	})
}
