package app

import (
	"context"
	"errors"
	"strings"

	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/pairing"
	"github.com/muurk/polfunbox/internal/xtream"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Login form fields.
const (
	fieldServer = "server"
	fieldUser   = "user"
	fieldPass   = "pass"
)

// Stream formats the settings screen cycles through.
var (
	liveFormats = []string{"m3u8", "ts"}
	vodFormats  = []string{"mp4", "mkv", "avi"}
)

type loginForm struct {
	server string
	user   string
	pass   string
	busy   bool
}

// prefillLogin fills empty form fields from the last stored account.
func (c *Controller) prefillLogin() {
	store := c.profile.Store()
	if c.st.login.server == "" {
		c.st.login.server, _ = store.Get(config.KeyServerURL)
	}
	if c.st.login.user == "" {
		c.st.login.user, _ = store.Get(config.KeyUsername)
	}
}

// Editing returns the id of the element taking text input, or "".
func (c *Controller) Editing() string {
	return c.st.editing
}

// SubmitText stores text into the element being edited and ends editing.
// The search input keeps editing so results follow every submitted query.
func (c *Controller) SubmitText(text string) {
	switch c.st.editing {
	case "":
		return
	case editSearch:
		c.SetSearchQuery(text)
		return
	case prefixLogin + fieldServer:
		c.st.login.server = strings.TrimSpace(text)
	case prefixLogin + fieldUser:
		c.st.login.user = strings.TrimSpace(text)
	case prefixLogin + fieldPass:
		c.st.login.pass = strings.TrimSpace(text)
	}
	id := c.st.editing
	c.st.editing = ""
	c.relayout()
	c.setFocus(id)
}

// CancelEdit leaves text input without changing the value.
func (c *Controller) CancelEdit() {
	c.st.editing = ""
}

// autoLogin resumes the stored session. A session the panel no longer
// accepts is cleared.
func (c *Controller) autoLogin() {
	creds, ok := c.profile.Session()
	if !ok {
		logging.Debug("No stored session")
		return
	}
	logging.Info("Auto-login", zap.String("server", logging.RedactURL(creds.ServerURL)), zap.String("user", creds.Username))
	c.login(creds, func(err error) {
		logging.Warn("Auto-login failed", zap.Error(err))
		if cerr := c.profile.ClearSession(); cerr != nil {
			logging.Warn("Failed to clear session", zap.Error(cerr))
		}
		c.showAlert(AlertWarning, "Sesja wygasła")
	}, "")
}

// login authenticates creds. On success the session is stored and the home
// screen shown with welcome as alert; otherwise onFail runs on the loop.
func (c *Controller) login(creds xtream.Credentials, onFail func(error), welcome string) {
	client, err := c.opts.NewClient(creds)
	if err != nil {
		onFail(err)
		return
	}

	c.st.login.busy = true
	c.relayout()
	c.async(purposeLogin, func(ctx context.Context) func() {
		account, err := client.Authenticate(ctx)
		return func() {
			c.st.login.busy = false
			if err != nil {
				c.relayout()
				onFail(err)
				return
			}
			c.finishLogin(client, account, welcome)
		}
	})
}

func (c *Controller) finishLogin(client *xtream.Client, account *xtream.AccountInfo, welcome string) {
	creds := client.Credentials()
	if err := c.profile.SaveSession(creds); err != nil {
		logging.Error("Failed to save session", zap.Error(err))
	}
	c.resetContent()
	c.client = client
	c.st.account = account
	c.st.login = loginForm{server: creds.ServerURL, user: creds.Username}
	logging.Info("Logged in", zap.String("user", creds.Username))

	c.showScreen(Home, "login", "")
	if welcome != "" {
		c.showAlert(AlertSuccess, welcome)
	}
}

// loginFailure turns a login error into the alert the user sees.
func (c *Controller) loginFailure(err error) {
	var rejected *pairing.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.showAlert(AlertError, rejected.Message)
	case xtream.IsAuthError(err), xtream.IsExpired(err):
		c.showAlert(AlertError, "Konto IPTV nieaktywne")
	default:
		c.showAlert(AlertError, xtream.UserMessage(err))
	}
}

func (c *Controller) activateLogin(action string) {
	switch action {
	case fieldServer, fieldUser, fieldPass:
		c.st.editing = prefixLogin + action
	case "submit":
		c.loginManual()
	case "device":
		c.loginByDevice()
	case "register":
		c.register()
	case "restart":
		c.restart()
	}
}

func (c *Controller) formCredentials() (xtream.Credentials, bool) {
	f := c.st.login
	creds := xtream.Credentials{ServerURL: f.server, Username: f.user, Password: f.pass}
	if !creds.Valid() {
		c.showAlert(AlertError, "Wypełnij wszystkie pola")
		return creds, false
	}
	return creds, true
}

func (c *Controller) loginManual() {
	if c.st.login.busy {
		return
	}
	creds, ok := c.formCredentials()
	if !ok {
		return
	}
	c.login(creds, c.loginFailure, "Zalogowano!")
}

// loginByDevice asks the pairing service which account the device code was
// assigned and logs in with it.
func (c *Controller) loginByDevice() {
	if c.st.login.busy {
		return
	}
	c.st.login.busy = true
	c.relayout()

	code := c.deviceKey
	c.async(purposeLogin, func(ctx context.Context) func() {
		c.pairingMu.Lock()
		creds, err := c.opts.Pairing.CheckDevice(ctx, code)
		c.pairingMu.Unlock()
		return func() {
			c.st.login.busy = false
			if err != nil {
				logging.Warn("Device login failed", zap.String("code", code), zap.Error(err))
				c.relayout()
				c.loginFailure(err)
				return
			}
			c.login(creds, c.loginFailure, "Zalogowano!")
		}
	})
}

// register submits the form's account for manual activation.
func (c *Controller) register() {
	if c.st.login.busy {
		return
	}
	creds, ok := c.formCredentials()
	if !ok {
		return
	}
	c.st.login.busy = true
	c.relayout()

	code := c.deviceKey
	c.async(purposeLogin, func(ctx context.Context) func() {
		c.pairingMu.Lock()
		msg, err := c.opts.Pairing.Register(ctx, code, creds)
		c.pairingMu.Unlock()
		return func() {
			c.st.login.busy = false
			c.relayout()
			if err != nil {
				logging.Warn("Registration failed", zap.Error(err))
				c.loginFailure(err)
				return
			}
			c.showAlert(AlertSuccess, msg)
		}
	})
}

// restart wipes every stored value and returns to a fresh login screen.
func (c *Controller) restart() {
	if err := c.profile.Store().Clear(); err != nil {
		logging.Error("Failed to clear storage", zap.Error(err))
		c.showAlert(AlertError, "Błąd zapisu ustawień")
		return
	}
	logging.Info("Storage cleared")
	c.signOut()
	c.st.login = loginForm{}
	c.st.settings = c.profile.Settings()
	c.st.draft = c.st.settings
	c.deviceKey = c.resolveDeviceCode()
	c.showScreen(Login, "restart", "")
}

// logout forgets the session. Favorites, history and settings stay.
func (c *Controller) logout() {
	if err := c.profile.ClearSession(); err != nil {
		logging.Warn("Failed to clear session", zap.Error(err))
	}
	logging.Info("Logged out")
	c.signOut()
	c.showScreen(Login, "logout", "")
}

func (c *Controller) signOut() {
	c.closeOverlay()
	c.stopLive()
	c.client = nil
	c.st.account = nil
	c.resetContent()
}

// resetContent drops everything loaded from the panel.
func (c *Controller) resetContent() {
	c.guard.invalidate(purposeHome)
	c.gate.Reset()
	c.st.homeLoading = false
	c.st.liveCats, c.st.allLive, c.st.liveCat, c.st.channels = nil, nil, "", nil
	c.st.vodCats, c.st.allMovies, c.st.vodCat, c.st.movies, c.st.movie = nil, nil, "", nil, nil
	c.st.seriesCats, c.st.allSeries, c.st.seriesCat, c.st.seriesList, c.st.series = nil, nil, "", nil, nil
}

// ---- home ----

func (c *Controller) enterHome() {
	if c.st.homeLoading || c.st.allLive != nil || c.st.allMovies != nil || c.st.allSeries != nil {
		return
	}
	c.refreshHome()
}

// refreshHome reloads the three full lists in parallel. A list that fails
// to load counts as empty.
func (c *Controller) refreshHome() {
	if c.client == nil {
		return
	}
	c.st.homeLoading = true
	c.st.liveCats, c.st.vodCats, c.st.seriesCats = nil, nil, nil
	c.relayout()

	client := c.client
	c.async(purposeHome, func(ctx context.Context) func() {
		var (
			live   []xtream.LiveStream
			movies []xtream.VodStream
			series []xtream.Series
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			live = degrade(gctx, "live streams", client.LiveStreams)
			return nil
		})
		g.Go(func() error {
			movies = degrade(gctx, "vod streams", client.VodStreams)
			return nil
		})
		g.Go(func() error {
			series = degrade(gctx, "series", client.Series)
			return nil
		})
		_ = g.Wait()

		return func() {
			c.st.homeLoading = false
			c.st.allLive = nonNil(live)
			c.st.allMovies = nonNil(movies)
			c.st.allSeries = nonNil(series)
			logging.Info("Home data loaded",
				zap.Int("channels", len(live)),
				zap.Int("movies", len(movies)),
				zap.Int("series", len(series)))
			if c.st.screen == Home {
				c.relayout()
			}
		}
	})
}

func degrade[T any](ctx context.Context, what string, fetch func(context.Context, string) ([]T, error)) []T {
	items, err := fetch(ctx, "")
	if err != nil {
		logging.Warn("Home list failed", zap.String("what", what), zap.Error(err))
		return nil
	}
	return items
}

// nonNil marks a list as loaded even when it is empty.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// ---- account ----

func (c *Controller) enterAccount() {
	if c.client == nil {
		return
	}
	client := c.client
	c.async(purposeScreen, func(ctx context.Context) func() {
		account, err := client.Authenticate(ctx)
		return func() {
			if err != nil {
				logging.Warn("Account refresh failed", zap.Error(err))
				return
			}
			c.st.account = account
		}
	})
}

// ---- settings ----

func (c *Controller) activateSetting(name string) {
	switch name {
	case "stream":
		c.st.draft.StreamFormat = nextFormat(liveFormats, c.st.draft.StreamFormat)
		c.relayout()
	case "vod":
		c.st.draft.VodFormat = nextFormat(vodFormats, c.st.draft.VodFormat)
		c.relayout()
	case "save":
		c.saveSettings()
	case "pin":
		if c.st.settings.PinConfigured() {
			c.openVerify(c.openSetup)
			return
		}
		c.openSetup()
	case "pin-off":
		if c.st.settings.PinConfigured() {
			c.openDisable()
		}
	}
}

func nextFormat(options []string, current string) string {
	for i, f := range options {
		if f == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

func (c *Controller) saveSettings() {
	s := c.profile.Settings()
	s.StreamFormat = c.st.draft.StreamFormat
	s.VodFormat = c.st.draft.VodFormat
	if err := c.profile.SaveSettings(s); err != nil {
		logging.Error("Failed to save settings", zap.Error(err))
		c.showAlert(AlertError, "Błąd zapisu ustawień")
		return
	}
	c.st.settings = s
	logging.Info("Settings saved", zap.String("stream_format", s.StreamFormat), zap.String("vod_format", s.VodFormat))
	c.showAlert(AlertSuccess, "Ustawienia zapisane")
}
