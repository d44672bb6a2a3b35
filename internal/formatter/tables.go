package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/desertthunder/spotx/internal/models"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func playableRow(i int, p models.Playable) table.Row {
	if p.IsNone() {
		return table.Row{i, "none", "(unavailable)", "", "", "", ""}
	}
	return table.Row{i, p.Kind.String(), p.Name(), p.Creator(), Collection(p), models.FormatDuration(p.DurationMS()), p.URI()}
}

var playableHeader = table.Row{"#", "Kind", "Name", "By", "From", "Length", "URI"}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintPlayables renders tracks and episodes in one table.
func PrintPlayables(w io.Writer, items []models.Playable) {
	t := newTable(w, playableHeader)
	for i, p := range items {
		t.AppendRow(playableRow(i+1, p))
	}
	t.Render()
}

// PrintTracks renders tracks.
func PrintTracks(w io.Writer, tracks []models.Track) {
	items := make([]models.Playable, len(tracks))
	for i := range tracks {
		items[i] = models.Playable{Kind: models.KindTrack, Track: &tracks[i]}
	}
	PrintPlayables(w, items)
}

// PrintPlaybackState writes a short summary of what is playing and where.
func PrintPlaybackState(w io.Writer, s models.PlaybackState) {
	status := "Paused"
	if s.IsPlaying {
		status = "Playing"
	}

	if s.Item.IsNone() {
		fmt.Fprintf(w, "%s: nothing (%s)\n", status, s.CurrentlyPlayingType)
	} else {
		fmt.Fprintf(w, "%s: %s - %s [%s]\n", status, s.Item.Creator(), s.Item.Name(), s.Progress())
	}

	fmt.Fprintf(w, "Device: %s (%s)", s.Device.Name, s.Device.Type)
	if v, ok := s.Device.VolumePercent.Get(); ok {
		fmt.Fprintf(w, " volume %d%%", v)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Shuffle: %t  Repeat: %s\n", s.ShuffleState, s.RepeatState)

	if ctx, ok := s.Context.Get(); ok {
		fmt.Fprintf(w, "Context: %s %s\n", ctx.Type, ctx.URI)
	}
}

// PrintQueue renders the currently playing item followed by the queue.
func PrintQueue(w io.Writer, q models.Queue) {
	t := newTable(w, playableHeader)
	if !q.CurrentlyPlaying.IsNone() {
		row := playableRow(0, q.CurrentlyPlaying)
		row[0] = "now"
		t.AppendRow(row)
		t.AppendSeparator()
	}
	for i, p := range q.Queue {
		t.AppendRow(playableRow(i+1, p))
	}
	t.Render()
}

// PrintDevices renders the user's devices.
func PrintDevices(w io.Writer, devices []models.Device) {
	t := newTable(w, table.Row{"#", "Name", "Type", "Status", "Volume", "Device ID"})
	for i, d := range devices {
		status := "Inactive"
		if d.IsActive {
			status = "● Active"
		}
		volume := ""
		if v, ok := d.VolumePercent.Get(); ok {
			volume = strconv.Itoa(v) + "%"
		}
		t.AppendRow(table.Row{i + 1, d.Name, d.Type, status, volume, d.ID.OrElse("")})
	}
	t.Render()
}

// PrintHistory renders recently played tracks.
func PrintHistory(w io.Writer, history []models.PlayHistory) {
	t := newTable(w, table.Row{"#", "Played At", "Name", "By", "Length"})
	for i, h := range history {
		t.AppendRow(table.Row{i + 1, h.PlayedAt, h.Track.Name, h.Track.ArtistNames(), models.FormatDuration(h.Track.DurationMS)})
	}
	t.Render()
}

// PrintPlaylists renders playlist summaries.
func PrintPlaylists(w io.Writer, playlists []models.SimplifiedPlaylist) {
	t := newTable(w, table.Row{"#", "Name", "Items", "Owner", "Playlist ID"})
	for i, p := range playlists {
		t.AppendRow(table.Row{i + 1, p.Name, p.Tracks.Total, ownerName(p.Owner), p.ID})
	}
	t.Render()
}

// PrintPlaylist writes a playlist header followed by its items, numbered from offset+1.
func PrintPlaylist(w io.Writer, p models.Playlist, items []models.PlaylistItem, offset int) {
	fmt.Fprintf(w, "%s by %s (%s)\n", p.Name, ownerName(p.Owner), visibility(p.Public))
	if desc := p.Description.OrElse(""); desc != "" {
		fmt.Fprintln(w, desc)
	}

	t := newTable(w, playableHeader)
	for i, item := range items {
		t.AppendRow(playableRow(offset+i+1, item.Track))
	}
	t.Render()
}

// PrintArtists renders artists with their genres.
func PrintArtists(w io.Writer, artists []models.Artist) {
	t := newTable(w, table.Row{"#", "Name", "Genres", "Followers", "URI"})
	for i, a := range artists {
		t.AppendRow(table.Row{i + 1, a.Name, strings.Join(a.Genres, ", "), a.Followers.Total, a.URI})
	}
	t.Render()
}

// PrintEpisodes renders episodes.
func PrintEpisodes(w io.Writer, episodes []models.Episode) {
	items := make([]models.Playable, len(episodes))
	for i := range episodes {
		items[i] = models.Playable{Kind: models.KindEpisode, Episode: &episodes[i]}
	}
	PrintPlayables(w, items)
}

// PrintUser writes the user's profile.
func PrintUser(w io.Writer, u models.User) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"Name", u.DisplayName},
		{"ID", u.ID},
		{"Email", u.Email},
		{"Country", u.Country},
		{"Product", u.Product},
		{"Followers", u.Followers.Total},
		{"URI", u.URI},
	})
	t.Render()
}
