package xtream

import (
	"net/url"
	"strings"
)

// Kind is the path segment of a stream URL.
type Kind string

const (
	KindLive   Kind = "live"
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// Default containers when the user has not chosen one.
const (
	DefaultLiveFormat = "m3u8"
	DefaultVodFormat  = "mp4"
)

// StreamURL builds {base}/{kind}/{user}/{pass}/{id}.{ext}. The result holds
// the credentials in clear text; log it only through logging.RedactURL.
func (c *Client) StreamURL(kind Kind, id, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultVodFormat
		if kind == KindLive {
			ext = DefaultLiveFormat
		}
	}
	return c.BaseURL + "/" + string(kind) + "/" +
		url.PathEscape(c.Username) + "/" +
		url.PathEscape(c.Password) + "/" +
		url.PathEscape(id) + "." + ext
}

// LiveURL is StreamURL for a live channel.
func (c *Client) LiveURL(streamID, ext string) string {
	return c.StreamURL(KindLive, streamID, ext)
}

// MovieURL is StreamURL for a movie.
func (c *Client) MovieURL(streamID, ext string) string {
	return c.StreamURL(KindMovie, streamID, ext)
}

// SeriesURL is StreamURL for an episode.
func (c *Client) SeriesURL(episodeID, ext string) string {
	return c.StreamURL(KindSeries, episodeID, ext)
}
