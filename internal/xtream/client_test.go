package xtream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const mockAccount = `{"user_info":{"username":"jan","auth":1,"status":"Active","exp_date":"%d","max_connections":"1"},"server_info":{"url":"panel","port":"8080","timezone":"Europe/Warsaw"}}`

const mockLiveStreams = `[
 {"num":1,"name":"TVP 1","stream_id":101,"stream_icon":"","epg_channel_id":"tvp1.pl","category_id":"3"},
 {"num":2,"name":"Polsat","stream_id":"102","stream_icon":"","epg_channel_id":null,"category_id":3}
]`

const mockSeriesInfo = `{
 "info":{"name":"Ranczo","cover":"c.jpg","rating":8.4},
 "episodes":{"2":[{"id":"2001","episode_num":1,"title":"Powrót","container_extension":"mkv","season":2,"info":[]}],
             "10":[{"id":"10001","episode_num":1,"title":"Finał","container_extension":"mp4","season":10,"info":{"duration":"00:45:00"}}],
             "1":[{"id":"1001","episode_num":"1","title":"Spadek","container_extension":"mp4","season":"1","info":{"movie_image":"e.jpg"}}]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Credentials{ServerURL: server.URL + "/", Username: "jan", Password: "tajne"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client.SetRetry(2, time.Millisecond)
	client.SetRateLimit(0, 0)
	return client
}

func TestNewClientValidation(t *testing.T) {
	tests := []Credentials{
		{},
		{ServerURL: "http://x", Username: "u"},
		{ServerURL: "ftp://x", Username: "u", Password: "p"},
		{ServerURL: "not a url", Username: "u", Password: "p"},
	}
	for _, creds := range tests {
		if _, err := NewClient(creds); err == nil {
			t.Errorf("NewClient(%+v) expected error", creds)
		}
	}

	c, err := NewClient(Credentials{ServerURL: " http://panel.example.com:8080/ ", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if c.BaseURL != "http://panel.example.com:8080" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
}

func TestAuthenticate(t *testing.T) {
	future := time.Now().Add(30 * 24 * time.Hour).Unix()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/player_api.php" || q.Get("username") != "jan" || q.Get("password") != "tajne" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if q.Has("action") {
			t.Errorf("account call sent action=%q", q.Get("action"))
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "polfun/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprintf(w, mockAccount, future)
	})

	info, err := client.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if info.UserInfo.Username != "jan" || info.ServerInfo.Timezone != "Europe/Warsaw" {
		t.Errorf("unexpected account %+v", info)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name        string
		body        string
		wantExpired bool
	}{
		{"no user info", `{"user_info":null}`, false},
		{"auth zero", `{"user_info":{"auth":0}}`, false},
		{"banned", `{"user_info":{"auth":1,"status":"Banned"}}`, false},
		{"status expired", `{"user_info":{"auth":"1","status":"Expired"}}`, true},
		{"exp date passed", fmt.Sprintf(`{"user_info":{"auth":1,"status":"Active","exp_date":%d}}`, past), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Authenticate(context.Background())
			if !IsAuthError(err) {
				t.Fatalf("Authenticate() error = %v, want auth error", err)
			}
			if IsExpired(err) != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", IsExpired(err), tt.wantExpired)
			}
		})
	}
}

func TestAuthenticateNoExpiry(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user_info":{"auth":1,"status":"Active","exp_date":null}}`))
	})
	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Errorf("unlimited account rejected: %v", err)
	}
}

func TestLiveStreamsTolerantIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "get_live_streams" || q.Get("category_id") != "3" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(mockLiveStreams))
	})

	streams, err := client.LiveStreams(context.Background(), "3")
	if err != nil {
		t.Fatalf("LiveStreams() error = %v", err)
	}
	var ids []string
	for _, s := range streams {
		ids = append(ids, s.StreamID.String()+"/"+s.CategoryID.String())
	}
	if diff := cmp.Diff([]string{"101/3", "102/3"}, ids); diff != "" {
		t.Errorf("stream ids (-want +got):\n%s", diff)
	}
	if streams[1].EPGChannelID != "" {
		t.Errorf("null epg_channel_id = %q", streams[1].EPGChannelID)
	}
}

func TestEmptyBodyIsEmptyList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "get_vod_categories" {
			_, _ = w.Write([]byte("null"))
		}
	})

	cats, err := client.VodCategories(context.Background())
	if err != nil || len(cats) != 0 {
		t.Errorf("VodCategories() = %v, %v", cats, err)
	}
	series, err := client.Series(context.Background(), "")
	if err != nil || len(series) != 0 {
		t.Errorf("Series() = %v, %v", series, err)
	}
}

func TestSeriesInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("series_id") != "77" {
			t.Errorf("series_id = %q", r.URL.Query().Get("series_id"))
		}
		_, _ = w.Write([]byte(mockSeriesInfo))
	})

	info, err := client.SeriesInfo(context.Background(), "77")
	if err != nil {
		t.Fatalf("SeriesInfo() error = %v", err)
	}
	if info.SeriesID != "77" || info.Info.Name != "Ranczo" || info.Info.Rating != "8.4" {
		t.Errorf("unexpected info %+v", info.Info)
	}
	if diff := cmp.Diff([]string{"1", "2", "10"}, info.Episodes.Numbers()); diff != "" {
		t.Errorf("season order (-want +got):\n%s", diff)
	}
	if ep := info.Episodes["2"][0]; ep.ContainerExtension != "mkv" || ep.Info.MovieImage != "" {
		t.Errorf("episode with empty info array = %+v", ep)
	}
}

func TestSeriesInfoEpisodeArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":[],"episodes":[[{"id":"5","episode_num":1}],[{"id":"6","episode_num":1}]]}`))
	})

	info, err := client.SeriesInfo(context.Background(), "1")
	if err != nil {
		t.Fatalf("SeriesInfo() error = %v", err)
	}
	if len(info.Episodes) != 2 || info.Episodes["2"][0].ID != "6" {
		t.Errorf("episodes = %+v", info.Episodes)
	}
}

func TestVodInfo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"info":{"plot":"Fabuła","duration_secs":5400,"rating":"7.5"},"movie_data":{"stream_id":9,"container_extension":"mkv"}}`))
	})

	info, err := client.VodInfo(context.Background(), "9")
	if err != nil {
		t.Fatalf("VodInfo() error = %v", err)
	}
	if info.Info.Plot != "Fabuła" || info.Info.DurationSec.Int() != 5400 || info.MovieData.ContainerExtension != "mkv" {
		t.Errorf("unexpected vod info %+v", info)
	}
}

func TestShortEPG(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("stream_id") != "101" {
			t.Errorf("stream_id = %q", r.URL.Query().Get("stream_id"))
		}
		_, _ = w.Write([]byte(`{"epg_listings":[{"title":"Teleexpress","start_timestamp":"1700000000","stop_timestamp":1700001800}]}`))
	})

	listings, err := client.ShortEPG(context.Background(), "101")
	if err != nil {
		t.Fatalf("ShortEPG() error = %v", err)
	}
	if len(listings) != 1 || listings[0].StopTimestamp != "1700001800" {
		t.Errorf("listings = %+v", listings)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"category_id":"1","category_name":"Filmy"}]`))
	})

	cats, err := client.VodCategories(context.Background())
	if err != nil {
		t.Fatalf("VodCategories() error = %v", err)
	}
	if len(cats) != 1 || calls != 3 {
		t.Errorf("got %d categories after %d calls", len(cats), calls)
	}
}

func TestNoRetryOnClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, "", IsAuthError},
		{"not found", http.StatusNotFound, "", func(err error) bool { e, ok := asAPIError(err); return ok && e.StatusCode == 404 }},
		{"garbage", http.StatusOK, "<html>", IsParseError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.LiveCategories(context.Background())
			if !tt.check(err) {
				t.Errorf("error = %v, wrong classification", err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
			if e, _ := asAPIError(err); e.Action != "get_live_categories" {
				t.Errorf("Action = %q", e.Action)
			}
		})
	}
}

func TestOversizedResponseRejected(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"category_id":"1","category_name":"` + strings.Repeat("x", 200) + `"}]`))
	})
	client.MaxResponseSize = 64

	_, err := client.LiveCategories(context.Background())
	if !IsParseError(err) {
		t.Fatalf("error = %v, want parse error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	client.MaxResponseSize = 1024
	cats, err := client.LiveCategories(context.Background())
	if err != nil || len(cats) != 1 {
		t.Errorf("LiveCategories() = %d categories, %v", len(cats), err)
	}
}

func TestTimeoutIsRetryable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	})
	client.HTTPClient.Timeout = 10 * time.Millisecond
	client.SetRetry(0, 0)

	_, err := client.LiveCategories(context.Background())
	if e, ok := asAPIError(err); !ok || e.Type != ErrTypeTimeout || !IsRetryable(err) {
		t.Errorf("error = %v, want retryable timeout", err)
	}
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := NewClient(Credentials{ServerURL: addr, Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	client.SetRetry(0, 0)

	_, err = client.LiveCategories(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}

func TestStreamURLs(t *testing.T) {
	client, _ := NewClient(Credentials{ServerURL: "http://panel:8080/", Username: "jan", Password: "p@ss"})

	tests := []struct {
		got, want string
	}{
		{client.LiveURL("101", "m3u8"), "http://panel:8080/live/jan/p@ss/101.m3u8"},
		{client.LiveURL("101", ""), "http://panel:8080/live/jan/p@ss/101.m3u8"},
		{client.MovieURL("9", ".mkv"), "http://panel:8080/movie/jan/p@ss/9.mkv"},
		{client.MovieURL("9", ""), "http://panel:8080/movie/jan/p@ss/9.mp4"},
		{client.SeriesURL("1001", "mp4"), "http://panel:8080/series/jan/p@ss/1001.mp4"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
