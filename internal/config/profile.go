package config

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/xtream"
)

// Storage keys, shared with every front end that reads the same file.
const (
	KeyLogged     = "is_logged"
	KeyServerURL  = "server_url"
	KeyUsername   = "username"
	KeyPassword   = "password"
	KeySettings   = "settings"
	KeyFavorites  = "favoriteChannels"
	KeyHistory    = "watchHistory"
	KeyDeviceCode = "device_code"
)

// MaxHistory is how many entries are kept per history kind.
const MaxHistory = 50

// History kinds.
const (
	HistoryMovies = "movies"
	HistorySeries = "series"
)

// Settings are the user preferences persisted as one JSON value.
type Settings struct {
	StreamFormat string `json:"streamFormat"`
	VodFormat    string `json:"vodFormat"`
	PinCode      string `json:"pinCode"`
	PinEnabled   bool   `json:"pinEnabled"`
}

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		StreamFormat: xtream.DefaultLiveFormat,
		VodFormat:    xtream.DefaultVodFormat,
	}
}

// PinConfigured reports whether content locking is active.
func (s Settings) PinConfigured() bool {
	return s.PinEnabled && s.PinCode != ""
}

// HistoryItem is one watched movie or series.
type HistoryItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cover     string `json:"cover,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`

	EpisodeID  string `json:"episodeId,omitempty"`
	SeasonNum  string `json:"seasonNum,omitempty"`
	EpisodeNum string `json:"episodeNum,omitempty"`
}

// Time returns the moment the item was watched.
func (h HistoryItem) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

type watchHistory struct {
	Movies []HistoryItem `json:"movies"`
	Series []HistoryItem `json:"series"`
}

// Profile is the typed view over a Store.
type Profile struct {
	store Store
	now   func() time.Time
}

// NewProfile wraps store.
func NewProfile(store Store) *Profile {
	return &Profile{store: store, now: time.Now}
}

// Store returns the underlying store.
func (p *Profile) Store() Store {
	return p.store
}

// Session returns the saved IPTV credentials, if a login was persisted.
func (p *Profile) Session() (xtream.Credentials, bool) {
	if v, _ := p.store.Get(KeyLogged); v != "true" {
		return xtream.Credentials{}, false
	}
	server, _ := p.store.Get(KeyServerURL)
	user, _ := p.store.Get(KeyUsername)
	pass, _ := p.store.Get(KeyPassword)
	creds := xtream.Credentials{ServerURL: server, Username: user, Password: pass}
	return creds, creds.Valid()
}

// SaveSession persists credentials after a successful login.
func (p *Profile) SaveSession(creds xtream.Credentials) error {
	for _, kv := range [][2]string{
		{KeyLogged, "true"},
		{KeyServerURL, creds.ServerURL},
		{KeyUsername, creds.Username},
		{KeyPassword, creds.Password},
	} {
		if err := p.store.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return nil
}

// ClearSession forgets the credentials. Favorites, history and settings stay.
func (p *Profile) ClearSession() error {
	for _, key := range []string{KeyLogged, KeyServerURL, KeyUsername, KeyPassword} {
		if err := p.store.Remove(key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	return nil
}

// Settings returns the saved settings merged over the defaults. A corrupt
// value is logged and ignored.
func (p *Profile) Settings() Settings {
	s := DefaultSettings()
	raw, ok := p.store.Get(KeySettings)
	if !ok || raw == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		logging.Warn("Error loading settings", zap.Error(err))
		return DefaultSettings()
	}
	return s
}

// SaveSettings persists s.
func (p *Profile) SaveSettings(s Settings) error {
	return p.setJSON(KeySettings, s)
}

// Favorites returns the favorite channel ids in the order they were added.
func (p *Profile) Favorites() []string {
	var ids []string
	p.getJSON(KeyFavorites, &ids)
	return ids
}

// IsFavorite reports whether channel id is a favorite.
func (p *Profile) IsFavorite(id string) bool {
	for _, fav := range p.Favorites() {
		if fav == id {
			return true
		}
	}
	return false
}

// ToggleFavorite adds or removes id and reports whether it is now a favorite.
func (p *Profile) ToggleFavorite(id string) (bool, error) {
	ids := p.Favorites()
	for i, fav := range ids {
		if fav == id {
			ids = append(ids[:i], ids[i+1:]...)
			return false, p.setJSON(KeyFavorites, ids)
		}
	}
	return true, p.setJSON(KeyFavorites, append(ids, id))
}

// History returns the entries of one kind, newest first.
func (p *Profile) History(kind string) []HistoryItem {
	h := p.history()
	switch kind {
	case HistoryMovies:
		return h.Movies
	case HistorySeries:
		return h.Series
	}
	return nil
}

// AddHistory records item at the front of its kind's list, dropping any
// earlier entry with the same id and trimming to MaxHistory.
func (p *Profile) AddHistory(item HistoryItem) error {
	if item.Type != HistoryMovies && item.Type != HistorySeries {
		return fmt.Errorf("unknown history kind %q", item.Type)
	}
	if item.Timestamp == 0 {
		item.Timestamp = p.now().UnixMilli()
	}

	h := p.history()
	list := &h.Movies
	if item.Type == HistorySeries {
		list = &h.Series
	}

	next := make([]HistoryItem, 0, len(*list)+1)
	next = append(next, item)
	for _, old := range *list {
		if old.ID != item.ID {
			next = append(next, old)
		}
	}
	if len(next) > MaxHistory {
		next = next[:MaxHistory]
	}
	*list = next

	return p.setJSON(KeyHistory, h)
}

func (p *Profile) history() watchHistory {
	h := watchHistory{}
	p.getJSON(KeyHistory, &h)
	if h.Movies == nil {
		h.Movies = []HistoryItem{}
	}
	if h.Series == nil {
		h.Series = []HistoryItem{}
	}
	return h
}

// DeviceCode returns the persisted pairing code.
func (p *Profile) DeviceCode() (string, bool) {
	code, ok := p.store.Get(KeyDeviceCode)
	return code, ok && code != ""
}

// SetDeviceCode persists the pairing code.
func (p *Profile) SetDeviceCode(code string) error {
	return p.store.Set(KeyDeviceCode, code)
}

func (p *Profile) getJSON(key string, v any) {
	raw, ok := p.store.Get(key)
	if !ok || raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logging.Warn("Ignoring corrupt stored value", zap.String("key", key), zap.Error(err))
	}
}

func (p *Profile) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.store.Set(key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
