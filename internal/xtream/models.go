package xtream

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string, number, bool or null. Panels disagree
// on whether ids, timestamps and ratings are quoted.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(data, []byte("true")):
		*f = "1"
	case bytes.Equal(data, []byte("false")):
		*f = "0"
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int parses the value, returning 0 when it is not an integer.
func (f FlexString) Int() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(f)), 10, 64)
	if err != nil {
		if fl, ferr := strconv.ParseFloat(strings.TrimSpace(string(f)), 64); ferr == nil {
			return int64(fl)
		}
		return 0
	}
	return n
}

// Float parses the value, returning 0 when it is not a number.
func (f FlexString) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil {
		return 0
	}
	return v
}

// lenientObject decodes data into v, treating the empty array some panels
// send instead of an empty object as "no data".
func lenientObject(data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == '[' || bytes.Equal(data, []byte("null")) {
		return nil
	}
	return json.Unmarshal(data, v)
}

// UserInfo is the account block of the login response.
type UserInfo struct {
	Username          string     `json:"username"`
	Message           string     `json:"message"`
	Auth              FlexString `json:"auth"`
	Status            string     `json:"status"`
	ExpDate           FlexString `json:"exp_date"`
	IsTrial           FlexString `json:"is_trial"`
	ActiveConnections FlexString `json:"active_cons"`
	MaxConnections    FlexString `json:"max_connections"`
	CreatedAt         FlexString `json:"created_at"`
}

// ServerInfo is the server block of the login response.
type ServerInfo struct {
	URL            string     `json:"url"`
	Port           FlexString `json:"port"`
	HTTPSPort      FlexString `json:"https_port"`
	ServerProtocol string     `json:"server_protocol"`
	Timezone       string     `json:"timezone"`
	TimestampNow   FlexString `json:"timestamp_now"`
}

// AccountInfo is the response of player_api.php without an action.
type AccountInfo struct {
	UserInfo   *UserInfo  `json:"user_info"`
	ServerInfo ServerInfo `json:"server_info"`
}

// Category is a live, VOD or series category.
type Category struct {
	ID       FlexString `json:"category_id"`
	Name     string     `json:"category_name"`
	ParentID FlexString `json:"parent_id"`
}

// LiveStream is one live channel.
type LiveStream struct {
	Num          FlexString `json:"num"`
	Name         string     `json:"name"`
	StreamType   string     `json:"stream_type"`
	StreamID     FlexString `json:"stream_id"`
	StreamIcon   string     `json:"stream_icon"`
	EPGChannelID FlexString `json:"epg_channel_id"`
	CategoryID   FlexString `json:"category_id"`
	TVArchive    FlexString `json:"tv_archive"`
}

// VodStream is one movie.
type VodStream struct {
	Num                FlexString `json:"num"`
	Name               string     `json:"name"`
	StreamID           FlexString `json:"stream_id"`
	StreamIcon         string     `json:"stream_icon"`
	Rating             FlexString `json:"rating"`
	Rating5            FlexString `json:"rating_5based"`
	CategoryID         FlexString `json:"category_id"`
	ContainerExtension string     `json:"container_extension"`
	Added              FlexString `json:"added"`
}

// Series is one entry of get_series.
type Series struct {
	Num         FlexString `json:"num"`
	Name        string     `json:"name"`
	SeriesID    FlexString `json:"series_id"`
	Cover       string     `json:"cover"`
	Plot        string     `json:"plot"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releaseDate"`
	Rating      FlexString `json:"rating"`
	Rating5     FlexString `json:"rating_5based"`
	CategoryID  FlexString `json:"category_id"`
}

// SeriesDetails is the info block of get_series_info.
type SeriesDetails struct {
	Name        string     `json:"name"`
	Cover       string     `json:"cover"`
	Plot        string     `json:"plot"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releaseDate"`
	Year        FlexString `json:"year"`
	Rating      FlexString `json:"rating"`
}

func (d *SeriesDetails) UnmarshalJSON(data []byte) error {
	type plain SeriesDetails
	return lenientObject(data, (*plain)(d))
}

// EpisodeInfo is the per-episode metadata block.
type EpisodeInfo struct {
	MovieImage string     `json:"movie_image"`
	Duration   string     `json:"duration"`
	Plot       string     `json:"plot"`
	Rating     FlexString `json:"rating"`
}

func (i *EpisodeInfo) UnmarshalJSON(data []byte) error {
	type plain EpisodeInfo
	return lenientObject(data, (*plain)(i))
}

// Episode is one playable episode.
type Episode struct {
	ID                 FlexString  `json:"id"`
	EpisodeNum         FlexString  `json:"episode_num"`
	Title              string      `json:"title"`
	ContainerExtension string      `json:"container_extension"`
	Season             FlexString  `json:"season"`
	Info               EpisodeInfo `json:"info"`
}

// Seasons maps a season number to its episodes. Panels send an object keyed
// by season, or an array of arrays when seasons are numbered from one.
type Seasons map[string][]Episode

func (s *Seasons) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	out := make(Seasons)
	if len(data) > 0 && data[0] == '[' {
		var list [][]Episode
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		for i, eps := range list {
			if len(eps) > 0 {
				out[strconv.Itoa(i+1)] = eps
			}
		}
		*s = out
		return nil
	}
	m := map[string][]Episode(out)
	if err := lenientObject(data, &m); err != nil {
		return err
	}
	*s = Seasons(m)
	return nil
}

// Numbers lists the seasons in numeric order.
func (s Seasons) Numbers() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aerr := strconv.Atoi(keys[i])
		b, berr := strconv.Atoi(keys[j])
		if aerr != nil || berr != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})
	return keys
}

// SeriesInfo is the response of get_series_info.
type SeriesInfo struct {
	SeriesID FlexString    `json:"-"`
	Info     SeriesDetails `json:"info"`
	Episodes Seasons       `json:"episodes"`
}

// MovieInfo is the info block of get_vod_info.
type MovieInfo struct {
	Name        string     `json:"name"`
	Plot        string     `json:"plot"`
	Description string     `json:"description"`
	Cast        string     `json:"cast"`
	Director    string     `json:"director"`
	Genre       string     `json:"genre"`
	ReleaseDate string     `json:"releasedate"`
	Year        FlexString `json:"year"`
	Duration    FlexString `json:"duration"`
	DurationSec FlexString `json:"duration_secs"`
	Rating      FlexString `json:"rating"`
	Trailer     string     `json:"youtube_trailer"`
	CoverBig    string     `json:"cover_big"`
}

func (i *MovieInfo) UnmarshalJSON(data []byte) error {
	type plain MovieInfo
	return lenientObject(data, (*plain)(i))
}

// MovieData is the movie_data block of get_vod_info.
type MovieData struct {
	StreamID           FlexString `json:"stream_id"`
	Name               string     `json:"name"`
	ContainerExtension string     `json:"container_extension"`
	CategoryID         FlexString `json:"category_id"`
}

func (d *MovieData) UnmarshalJSON(data []byte) error {
	type plain MovieData
	return lenientObject(data, (*plain)(d))
}

// VodInfo is the response of get_vod_info.
type VodInfo struct {
	Info      MovieInfo `json:"info"`
	MovieData MovieData `json:"movie_data"`
}

// EPGListing is one entry of get_short_epg. Some panels send stop instead
// of end.
type EPGListing struct {
	ID             FlexString `json:"id"`
	EPGID          FlexString `json:"epg_id"`
	Title          string     `json:"title"`
	Lang           string     `json:"lang"`
	Start          string     `json:"start"`
	End            string     `json:"end"`
	Stop           string     `json:"stop"`
	Description    string     `json:"description"`
	ChannelID      string     `json:"channel_id"`
	StartTimestamp FlexString `json:"start_timestamp"`
	StopTimestamp  FlexString `json:"stop_timestamp"`
}

type shortEPG struct {
	Listings []EPGListing `json:"epg_listings"`
}
