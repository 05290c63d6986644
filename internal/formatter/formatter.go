// package formatter provides functions to export listening reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
)

// ArtistsToCSV converts a top-artists listing to CSV with columns: Rank, Name, Genres, Popularity, Followers
func ArtistsToCSV(listing *services.TopItemsResponse[services.Artist]) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Name", "Genres", "Popularity", "Followers"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, artist := range listing.Items {
		record := []string{
			strconv.Itoa(i + 1),
			artist.Name,
			strings.Join(artist.Genres, "; "),
			strconv.Itoa(artist.Popularity),
			strconv.Itoa(artist.Followers.Total),
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

// TracksToCSV converts a top-tracks listing to CSV with columns: Rank, Title, Artists, Album, Duration
func TracksToCSV(listing *services.TopItemsResponse[services.Track]) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "Title", "Artists", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range listing.Items {
		record := []string{
			strconv.Itoa(i + 1),
			track.Name,
			services.ArtistLine(track),
			track.Album.Name,
			shared.FormatDuration(track.DurationMS),
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

// ExportToMarkdown converts a dashboard report to Markdown format with optional profile image
func ExportToMarkdown(data *tasks.DashboardData, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	title := "Listening Report"
	if data.User != nil && data.User.DisplayName != "" {
		title = fmt.Sprintf("%s's Listening Report", data.User.DisplayName)
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Profile](%s)\n\n", imageFilename))
	}

	if data.User != nil {
		buf.WriteString(fmt.Sprintf("**Followers**: %d\n\n", data.User.Followers.Total))
	}

	if len(data.Genres) > 0 {
		buf.WriteString("## Top Genres\n\n")
		for i, genre := range data.Genres {
			buf.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, genre.Genre, genre.Count))
		}
		buf.WriteString("\n")
	}

	if data.Top != nil && data.Top.TopArtists != nil {
		buf.WriteString("## Top Artists\n\n")
		for i, artist := range data.Top.TopArtists.Items {
			genrePart := ""
			if len(artist.Genres) > 0 {
				genrePart = fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
			}
			buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, artist.Name, genrePart))
		}
		buf.WriteString("\n")
	}

	if data.Top != nil && data.Top.TopTracks != nil {
		buf.WriteString("## Top Tracks\n\n")
		for i, track := range data.Top.TopTracks.Items {
			duration := shared.FormatDuration(track.DurationMS)
			albumPart := ""
			if track.Album.Name != "" {
				albumPart = fmt.Sprintf(" (%s)", track.Album.Name)
			}
			buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, services.ArtistLine(track), track.Name, albumPart, duration))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a dashboard report to plain text format
func ExportToText(data *tasks.DashboardData) ([]byte, error) {
	var buf bytes.Buffer

	if data.User != nil {
		buf.WriteString(fmt.Sprintf("User: %s\n", data.User.DisplayName))
	}

	if len(data.Genres) > 0 {
		buf.WriteString("\nTop Genres:\n")
		for i, genre := range data.Genres {
			buf.WriteString(fmt.Sprintf("%d. %s (%d)\n", i+1, genre.Genre, genre.Count))
		}
	}

	if data.Top != nil && data.Top.TopArtists != nil {
		buf.WriteString("\nTop Artists:\n")
		for i, artist := range data.Top.TopArtists.Items {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, artist.Name))
		}
	}

	if data.Top != nil && data.Top.TopTracks != nil {
		buf.WriteString("\nTop Tracks:\n")
		for i, track := range data.Top.TopTracks.Items {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, services.ArtistLine(track), track.Name))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a dashboard report to indented JSON
func ExportToJSON(data *tasks.DashboardData) ([]byte, error) {
	return shared.MarshalJSON(data, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
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

// ToMetadataJSON generates a JSON representation of the user's profile
func ToMetadataJSON(user *services.User) ([]byte, error) {
	return shared.MarshalJSON(user, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ArtistsFile  string
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a dashboard report to CSV with an accompanying profile JSON file.
//
// Defaults to "report" as the base filename & creates {base}_artists.csv,
// {base}_tracks.csv and {base}_profile.json for the sections present.
func WriteCSVExport(data *tasks.DashboardData, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "report"
	}

	result := &CSVExportResult{}

	if data.Top != nil && data.Top.TopArtists != nil {
		csvData, err := ArtistsToCSV(data.Top.TopArtists)
		if err != nil {
			return nil, fmt.Errorf("failed to generate artists CSV: %w", err)
		}

		result.ArtistsFile = baseFilepath + "_artists.csv"
		if err := os.WriteFile(result.ArtistsFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write artists CSV: %w", err)
		}
	}

	if data.Top != nil && data.Top.TopTracks != nil {
		csvData, err := TracksToCSV(data.Top.TopTracks)
		if err != nil {
			return nil, fmt.Errorf("failed to generate tracks CSV: %w", err)
		}

		result.TracksFile = baseFilepath + "_tracks.csv"
		if err := os.WriteFile(result.TracksFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write tracks CSV: %w", err)
		}
	}

	if data.User != nil {
		metadataJSON, err := ToMetadataJSON(data.User)
		if err != nil {
			return nil, fmt.Errorf("failed to generate profile JSON: %w", err)
		}

		result.MetadataFile = baseFilepath + "_profile.json"
		if err := os.WriteFile(result.MetadataFile, metadataJSON, 0644); err != nil {
			return nil, fmt.Errorf("failed to write profile file: %w", err)
		}
	}

	return result, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory    string
	Files        []string
	ProfileImage string
}

// WriteMarkdownExport exports a dashboard report to Markdown format in a dedicated directory.
//
// Directory name defaults to "report".
// The imageURL parameter is optional - if provided, attempts to download the profile image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/profile.jpg
func WriteMarkdownExport(data *tasks.DashboardData, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "report"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var profileImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download profile image: %v\n", err)
		} else {
			profileImageFilename = "profile.jpg"
			profileImagePath := fmt.Sprintf("%s/%s", outputDir, profileImageFilename)
			if err := os.WriteFile(profileImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save profile image: %v\n", err)
				profileImageFilename = ""
			} else {
				result.ProfileImage = profileImagePath
				result.Files = append(result.Files, profileImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(data, profileImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a dashboard report to plain text format.
//
// Defaults to report.txt as the filename.
func WriteTextExport(data *tasks.DashboardData, filepath string) (string, error) {
	if filepath == "" {
		filepath = "report.txt"
	}

	textData, err := ExportToText(data)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// WriteJSONExport exports a dashboard report to a JSON file.
//
// Defaults to report.json as the filename.
func WriteJSONExport(data *tasks.DashboardData, filepath string) (string, error) {
	if filepath == "" {
		filepath = "report.json"
	}

	jsonData, err := ExportToJSON(data)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
