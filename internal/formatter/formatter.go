// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/spotx/internal/models"
)

// PlaylistExport is a playlist together with every one of its items.
type PlaylistExport struct {
	Playlist models.Playlist      `json:"playlist"`
	Items    []models.PlaylistItem `json:"items"`
}

// PlaylistMetadata is the playlist without its items, written next to track exports.
type PlaylistMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Public      bool   `json:"public"`
	SnapshotID  string `json:"snapshot_id"`
	URI         string `json:"uri"`
	ItemCount   int    `json:"item_count"`
	ExportedAt  string `json:"exported_at"`
}

// Collection returns the album name of a track or the show name of an episode.
func Collection(p models.Playable) string {
	switch p.Kind {
	case models.KindTrack:
		return p.Track.Album.Name
	case models.KindEpisode:
		return p.Episode.Show.Name
	}
	return ""
}

func ownerName(o models.Owner) string {
	if name, ok := o.DisplayName.Get(); ok && name != "" {
		return name
	}
	return o.ID
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, Kind, Name, Creator, Collection,
// Duration, URI, Added At. Items with no playable content are written with kind "none".
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Kind", "Name", "Creator", "Collection", "Duration", "URI", "Added At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range export.Items {
		record := []string{
			strconv.Itoa(i + 1),
			item.Track.Kind.String(),
			item.Track.Name(),
			item.Track.Creator(),
			Collection(item.Track),
			strconv.Itoa(item.Track.DurationMS()),
			item.Track.URI(),
			item.AddedAt,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format with optional cover image
func ExportToMarkdown(export *PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	buf.WriteString(fmt.Sprintf("# %s\n\n", p.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if desc := p.Description.OrElse(""); desc != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", desc))
	}

	buf.WriteString(fmt.Sprintf("**Owner**: %s\n", ownerName(p.Owner)))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(export.Items)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n\n", visibility(p.Public)))

	buf.WriteString("## Items\n\n")
	n := 0
	for _, item := range export.Items {
		if item.Track.IsNone() {
			continue
		}
		n++
		collection := ""
		if c := Collection(item.Track); c != "" {
			collection = fmt.Sprintf(" (%s)", c)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n",
			n, item.Track.Creator(), item.Track.Name(), collection, models.FormatDuration(item.Track.DurationMS())))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name))
	if desc := export.Playlist.Description.OrElse(""); desc != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", desc))
	}
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(export.Items)))

	for i, item := range export.Items {
		if item.Track.IsNone() {
			buf.WriteString(fmt.Sprintf("%d. (unavailable)\n", i+1))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, item.Track.Creator(), item.Track.Name()))
	}

	return buf.Bytes(), nil
}

func visibility(public bool) string {
	if public {
		return "Public"
	}
	return "Private"
}

// DownloadImage downloads an image from the given URL and returns the raw bytes. A nil client uses a 30s timeout.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without items)
func ToMetadataJSON(export *PlaylistExport, now time.Time) ([]byte, error) {
	p := export.Playlist
	meta := PlaylistMetadata{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description.OrElse(""),
		Owner:       ownerName(p.Owner),
		Public:      p.Public,
		SnapshotID:  p.SnapshotID,
		URI:         p.URI,
		ItemCount:   len(export.Items),
		ExportedAt:  now.UTC().Format(time.RFC3339),
	}
	return json.MarshalIndent(meta, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	// Warning is set when the cover image could not be saved; the Markdown export still succeeds.
	Warning error
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID. When the playlist has images, the first one is downloaded as cover.jpg.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(ctx context.Context, client *http.Client, export *PlaylistExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if len(export.Playlist.Images) > 0 {
		imageData, err := DownloadImage(ctx, client, export.Playlist.Images[0].URL)
		if err != nil {
			result.Warning = err
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.Warning = fmt.Errorf("failed to save cover image: %w", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(export *PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", export.Playlist.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
