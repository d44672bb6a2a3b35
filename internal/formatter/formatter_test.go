package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/codec"
	"github.com/desertthunder/spotx/internal/models"
	th "github.com/desertthunder/spotx/internal/testing"
)

func testExport() *PlaylistExport {
	return &PlaylistExport{
		Playlist: models.Playlist{
			ID:          "test123",
			Name:        "Test Playlist",
			Description: codec.Some("A test playlist"),
			Owner:       models.Owner{ID: "owner1", DisplayName: codec.Some("Owner One")},
			Public:      true,
		},
		Items: []models.PlaylistItem{
			{
				AddedAt: "2026-01-01T00:00:00Z",
				Track: models.Playable{Kind: models.KindTrack, Track: &models.Track{
					Name:       "Song One",
					URI:        "spotify:track:t1",
					DurationMS: 180000,
					Artists:    []models.SimplifiedArtist{{Name: "Artist One"}},
					Album:      models.SimplifiedAlbum{Name: "Album One"},
				}},
			},
			{AddedAt: "2026-01-02T00:00:00Z"},
			{
				AddedAt: "2026-01-03T00:00:00Z",
				Track: models.Playable{Kind: models.KindEpisode, Episode: &models.Episode{
					Name:       "Episode One",
					URI:        "spotify:episode:e1",
					DurationMS: 1800000,
					Show:       models.SimplifiedShow{Name: "Show One"},
				}},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Position,Kind,Name,Creator,Collection,Duration,URI,Added At") {
			t.Errorf("CSV missing headers, got: %s", output)
		}

		if !strings.Contains(output, "1,track,Song One,Artist One,Album One,180000,spotify:track:t1,2026-01-01T00:00:00Z") {
			t.Errorf("CSV missing track row, got: %s", output)
		}
		if !strings.Contains(output, "2,none,") {
			t.Errorf("CSV missing empty row, got: %s", output)
		}
		if !strings.Contains(output, "3,episode,Episode One,Show One,Show One") {
			t.Errorf("CSV missing episode row, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		for _, want := range []string{
			"# Test Playlist",
			"![Cover](cover.jpg)",
			"**Description**: A test playlist",
			"**Owner**: Owner One",
			"**Visibility**: Public",
			"1. Artist One - Song One (Album One) [3:00]",
			"2. Show One - Episode One (Show One) [30:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Cover", func(t *testing.T) {
		data, _ := ExportToMarkdown(testExport(), "")
		if strings.Contains(string(data), "![Cover]") {
			t.Error("expected no cover image reference")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Playlist: Test Playlist") {
			t.Errorf("text missing title, got: %s", output)
		}
		if !strings.Contains(output, "2. (unavailable)") {
			t.Errorf("text missing unavailable entry, got: %s", output)
		}
		if !strings.Contains(output, "3. Show One - Episode One") {
			t.Errorf("text missing episode, got: %s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		data, err := ToMetadataJSON(testExport(), now)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var meta PlaylistMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if meta.ItemCount != 3 || meta.Owner != "Owner One" || meta.ExportedAt != "2026-03-01T12:00:00Z" {
			t.Errorf("unexpected metadata %+v", meta)
		}

		if strings.Contains(string(data), "Song One") {
			t.Error("metadata should not include items")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "out")

		result, err := WriteCSVExport(testExport(), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		th.AssertFileExists(t, result.TracksFile)
		th.AssertFileExists(t, result.MetadataFile)

		if !strings.Contains(th.MustReadFile(t, result.TracksFile), "Song One") {
			t.Error("tracks file missing content")
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "list.txt")

		got, err := WriteTextExport(testExport(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("downloads cover", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer srv.Close()

			export := testExport()
			export.Playlist.Images = []models.Image{{URL: srv.URL + "/cover.jpg"}}
			dir := filepath.Join(t.TempDir(), "md")

			result, err := WriteMarkdownExport(context.Background(), srv.Client(), export, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Warning != nil {
				t.Errorf("unexpected warning %v", result.Warning)
			}

			if th.MustReadFile(t, result.CoverImage) != "jpeg-bytes" {
				t.Error("cover image not written")
			}

			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README missing cover reference")
			}
		})

		t.Run("cover failure is a warning", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer srv.Close()

			export := testExport()
			export.Playlist.Images = []models.Image{{URL: srv.URL}}
			dir := filepath.Join(t.TempDir(), "md")

			result, err := WriteMarkdownExport(context.Background(), srv.Client(), export, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Warning == nil || result.CoverImage != "" {
				t.Errorf("expected warning and no cover, got %+v", result)
			}

			if _, err := os.Stat(filepath.Join(dir, "cover.jpg")); !os.IsNotExist(err) {
				t.Error("cover file should not exist")
			}
		})
	})
}

func TestTables(t *testing.T) {
	t.Run("PrintQueue", func(t *testing.T) {
		var buf bytes.Buffer
		export := testExport()
		q := models.Queue{
			CurrentlyPlaying: export.Items[0].Track,
			Queue:            []models.Playable{export.Items[2].Track, {}},
		}

		PrintQueue(&buf, q)
		output := buf.String()

		for _, want := range []string{"now", "Song One", "Episode One", "(unavailable)"} {
			if !strings.Contains(output, want) {
				t.Errorf("queue table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("PrintDevices", func(t *testing.T) {
		var buf bytes.Buffer
		PrintDevices(&buf, []models.Device{
			{ID: codec.Some("d1"), Name: "Speaker", Type: "Speaker", IsActive: true, VolumePercent: codec.Some(40)},
			{Name: "Unknown", Type: "Unknown"},
		})

		output := buf.String()
		for _, want := range []string{"Speaker", "● Active", "40%", "d1", "Inactive"} {
			if !strings.Contains(output, want) {
				t.Errorf("devices table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("PrintPlaybackState", func(t *testing.T) {
		var buf bytes.Buffer
		PrintPlaybackState(&buf, models.PlaybackState{
			IsPlaying:            false,
			CurrentlyPlayingType: "ad",
			Device:               models.Device{Name: "Phone", Type: "Smartphone"},
			RepeatState:          models.RepeatOff,
		})

		output := buf.String()
		if !strings.Contains(output, "Paused: nothing (ad)") || !strings.Contains(output, "Device: Phone (Smartphone)") {
			t.Errorf("unexpected output:\n%s", output)
		}
	})

	t.Run("PrintJSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := PrintJSON(&buf, testExport().Items[1].Track); err != nil {
			t.Fatalf("PrintJSON failed: %v", err)
		}

		if strings.TrimSpace(buf.String()) != "null" {
			t.Errorf("expected null for empty playable, got %s", buf.String())
		}
	})
}
