// Spotify Web API endpoints
//
// Response shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// TimeRange selects the affinity window for top items.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// ParseTimeRange accepts "short", "medium", "long" or the full API names. Empty selects [MediumTerm].
func ParseTimeRange(s string) (TimeRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "medium", "medium_term":
		return MediumTerm, nil
	case "short", "short_term":
		return ShortTerm, nil
	case "long", "long_term":
		return LongTerm, nil
	}
	return "", fmt.Errorf("%w: unknown time range %q", shared.ErrInvalidArgument, s)
}

// PlayOptions starts or resumes playback. The zero value resumes on the active device.
type PlayOptions struct {
	DeviceID   string
	ContextURI string
	URIs       []string
	PositionMS int
}

func (o PlayOptions) body() map[string]any {
	body := map[string]any{}
	if o.ContextURI != "" {
		body["context_uri"] = o.ContextURI
	}
	if len(o.URIs) > 0 {
		body["uris"] = o.URIs
	}
	if o.PositionMS > 0 {
		body["position_ms"] = o.PositionMS
	}
	if len(body) == 0 {
		return nil
	}
	return body
}

func deviceQuery(deviceID string) url.Values {
	if deviceID == "" {
		return nil
	}
	return url.Values{"device_id": {deviceID}}
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id", shared.ErrMissingArgument, kind)
	}
	return nil
}

// Me returns the current user's profile.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	return Fetch(ctx, c, "/me", nil, models.DecodeUser)
}

// PlaybackState returns the current playback state. It is not set when nothing is playing.
func (c *Client) PlaybackState(ctx context.Context) (codec.Optional[models.PlaybackState], error) {
	q := url.Values{"additional_types": {"track,episode"}}
	return FetchOptional(ctx, c, "/me/player", q, models.DecodePlaybackState)
}

// CurrentlyPlaying returns the object currently playing. It is not set when nothing is playing.
func (c *Client) CurrentlyPlaying(ctx context.Context) (codec.Optional[models.PlaybackState], error) {
	q := url.Values{"additional_types": {"track,episode"}}
	return FetchOptional(ctx, c, "/me/player/currently-playing", q, models.DecodePlaybackState)
}

// Devices lists the user's available devices.
func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	return Fetch(ctx, c, "/me/player/devices", nil, func(o codec.Object) []models.Device {
		devices, skipped := codec.ArrayCount(o, "devices", models.DecodeDevice)
		c.warnSkipped("/me/player/devices", skipped)
		return devices
	})
}

// Queue returns the currently playing item and the upcoming queue.
func (c *Client) Queue(ctx context.Context) (models.Queue, error) {
	return Fetch(ctx, c, "/me/player/queue", nil, models.DecodeQueue)
}

// RecentlyPlayed returns a cursor page of play history. A non-zero before returns items played before that instant.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int, before time.Time) (codec.Envelope[models.PlayHistory], error) {
	q := PageQuery(limit, 0)
	if !before.IsZero() {
		q.Set("before", strconv.FormatInt(before.UnixMilli(), 10))
	}
	return FetchPage(ctx, c, "/me/player/recently-played", q, models.DecodePlayHistory)
}

// Play starts or resumes playback.
func (c *Client) Play(ctx context.Context, opts PlayOptions) error {
	var body any
	if b := opts.body(); b != nil {
		body = b
	}
	return c.Send(ctx, http.MethodPut, "/me/player/play", deviceQuery(opts.DeviceID), body)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context, deviceID string) error {
	return c.Send(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil)
}

// Next skips to the next item.
func (c *Client) Next(ctx context.Context, deviceID string) error {
	return c.Send(ctx, http.MethodPost, "/me/player/next", deviceQuery(deviceID), nil)
}

// Previous skips to the previous item.
func (c *Client) Previous(ctx context.Context, deviceID string) error {
	return c.Send(ctx, http.MethodPost, "/me/player/previous", deviceQuery(deviceID), nil)
}

// AddToQueue appends a track or episode URI to the queue.
func (c *Client) AddToQueue(ctx context.Context, uri, deviceID string) error {
	if !strings.HasPrefix(uri, "spotify:") {
		return fmt.Errorf("%w: expected a spotify: URI, got %q", shared.ErrInvalidArgument, uri)
	}
	q := url.Values{"uri": {uri}}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return c.Send(ctx, http.MethodPost, "/me/player/queue", q, nil)
}

// Playlist returns a playlist with the first page of its items.
func (c *Client) Playlist(ctx context.Context, playlistID string) (models.Playlist, error) {
	if err := requireID("playlist", playlistID); err != nil {
		return models.Playlist{}, err
	}
	q := url.Values{"additional_types": {"track,episode"}}
	p, err := Fetch(ctx, c, "/playlists/"+url.PathEscape(playlistID), q, models.DecodePlaylist)
	if err == nil {
		c.warnSkipped("/playlists/"+playlistID, p.Tracks.Skipped)
	}
	return p, err
}

// PlaylistItems returns one offset page of a playlist's items.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (codec.Envelope[models.PlaylistItem], error) {
	if err := requireID("playlist", playlistID); err != nil {
		return codec.Envelope[models.PlaylistItem]{}, err
	}
	q := PageQuery(limit, offset)
	q.Set("additional_types", "track,episode")
	return FetchPage(ctx, c, "/playlists/"+url.PathEscape(playlistID)+"/tracks", q, models.DecodePlaylistItem)
}

// AllPlaylistItems follows "next" links until every item of the playlist has been fetched.
func (c *Client) AllPlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	page, err := c.PlaylistItems(ctx, playlistID, MaxLimit, 0)
	if err != nil {
		return nil, err
	}

	items := page.Items
	for page.HasNext() {
		next, _ := page.Next.Get()
		if page, err = FetchPage(ctx, c, next, nil, models.DecodePlaylistItem); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// UserPlaylists returns one offset page of the current user's playlists.
func (c *Client) UserPlaylists(ctx context.Context, limit, offset int) (codec.Envelope[models.SimplifiedPlaylist], error) {
	return FetchPage(ctx, c, "/me/playlists", PageQuery(limit, offset), models.DecodeSimplifiedPlaylist)
}

// FollowedArtists returns a cursor page of followed artists. The response is wrapped under "artists".
func (c *Client) FollowedArtists(ctx context.Context, limit int, after string) (codec.Envelope[models.Artist], error) {
	q := PageQuery(limit, 0)
	q.Set("type", "artist")
	if after != "" {
		q.Set("after", after)
	}

	env, err := FetchWrapped(ctx, c, "/me/following", q, "artists", codec.EnvelopeDecoder(models.DecodeArtist))
	if err == nil {
		c.warnSkipped("/me/following", env.Skipped)
	}
	return env, err
}

// TopTracks returns the user's top tracks over the given range.
func (c *Client) TopTracks(ctx context.Context, tr TimeRange, limit, offset int) (codec.Envelope[models.Track], error) {
	q := PageQuery(limit, offset)
	q.Set("time_range", string(tr))
	return FetchPage(ctx, c, "/me/top/tracks", q, models.DecodeTrack)
}

// TopArtists returns the user's top artists over the given range.
func (c *Client) TopArtists(ctx context.Context, tr TimeRange, limit, offset int) (codec.Envelope[models.Artist], error) {
	q := PageQuery(limit, offset)
	q.Set("time_range", string(tr))
	return FetchPage(ctx, c, "/me/top/artists", q, models.DecodeArtist)
}

// SavedTracks returns one page of the user's library tracks.
func (c *Client) SavedTracks(ctx context.Context, limit, offset int) (codec.Envelope[models.SavedTrack], error) {
	return FetchPage(ctx, c, "/me/tracks", PageQuery(limit, offset), models.DecodeSavedTrack)
}

// SavedEpisodes returns one page of the user's saved episodes.
func (c *Client) SavedEpisodes(ctx context.Context, limit, offset int) (codec.Envelope[models.SavedEpisode], error) {
	return FetchPage(ctx, c, "/me/episodes", PageQuery(limit, offset), models.DecodeSavedEpisode)
}

// Track returns a single track.
func (c *Client) Track(ctx context.Context, trackID string) (models.Track, error) {
	if err := requireID("track", trackID); err != nil {
		return models.Track{}, err
	}
	return Fetch(ctx, c, "/tracks/"+url.PathEscape(trackID), nil, models.DecodeTrack)
}

// Episode returns a single episode.
func (c *Client) Episode(ctx context.Context, episodeID string) (models.Episode, error) {
	if err := requireID("episode", episodeID); err != nil {
		return models.Episode{}, err
	}
	return Fetch(ctx, c, "/episodes/"+url.PathEscape(episodeID), nil, models.DecodeEpisode)
}
