package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tempo/internal/formatter"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/desertthunder/tempo/internal/tasks"
	"github.com/urfave/cli/v3"
)

// StatsExport fetches a listening report and writes it to disk in the chosen format.
func (r *Runner) StatsExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	switch format {
	case "csv", "markdown", "md", "text", "txt", "json":
	default:
		return fmt.Errorf("%w: format must be csv, markdown, text or json", shared.ErrInvalidFlag)
	}

	params := services.TopItemsParams{
		Type:      services.ItemType(cmd.String("type")),
		Limit:     int(cmd.Int("limit")),
		TimeRange: services.TimeRange(cmd.String("time-range")),
	}
	if err := params.Validate(); err != nil {
		return err
	}

	gate := r.gate()

	r.logger.Info("exporting report", "format", format, "time_range", params.TimeRange)

	items, err := resolveResult(r, r.top.Fetch(ctx, gate, params))
	if err != nil {
		return err
	}
	user, err := resolveResult(r, r.profile.Fetch(ctx, gate))
	if err != nil {
		return err
	}

	data := &tasks.DashboardData{User: user, Top: items}
	if items.TopArtists != nil {
		data.Genres = tasks.TallyGenres(items.TopArtists.Items)
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(data, output)
		if err != nil {
			return err
		}
		for _, file := range []string{result.ArtistsFile, result.TracksFile, result.MetadataFile} {
			if file != "" {
				r.writePlain("✓ Wrote %s\n", file)
			}
		}
		return nil

	case "markdown", "md":
		imageURL := ""
		if user != nil && len(user.Images) > 0 {
			imageURL = user.Images[0].URL
		}
		result, err := formatter.WriteMarkdownExport(data, output, imageURL)
		if err != nil {
			return err
		}
		for _, file := range result.Files {
			r.writePlain("✓ Wrote %s\n", file)
		}
		return nil

	case "text", "txt":
		file, err := formatter.WriteTextExport(data, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", file)

	default:
		file, err := formatter.WriteJSONExport(data, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", file)
	}
}
