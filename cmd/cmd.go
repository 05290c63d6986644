// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles session management
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the login session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize via the browser and capture the redirect",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "direct",
						Usage: "Authorize directly against Spotify instead of the proxy /login endpoint",
					},
					&cli.IntFlag{
						Name:  "timeout",
						Usage: "Seconds to wait for the login redirect",
						Value: 180,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "token",
				Usage: "Show the current token, or save one from a pasted redirect URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.AuthToken,
			},
			{
				Name:  "status",
				Usage: "Show session state and expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Verify the token against the proxy /me endpoint",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Discard the stored session",
				Action: r.AuthLogout,
			},
		},
	}
}

// statsCommand handles statistics fetches
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Fetch listening statistics",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "Show top artists and/or tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Item type (artists or tracks; empty fetches both)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of items to return (1-50)",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Index of the first item",
					},
					&cli.StringFlag{
						Name:  "time-range",
						Usage: "Statistics window (short_term, medium_term, long_term)",
						Value: "medium_term",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save API response locally",
					},
				},
				Action: r.StatsTop,
			},
			{
				Name:  "profile",
				Usage: "Show the current user's profile",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.StatsProfile,
			},
			{
				Name:  "fetch",
				Usage: "Fetch the complete listing and record a snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Item type (artists or tracks)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "time-range",
						Usage: "Statistics window (short_term, medium_term, long_term)",
						Value: "medium_term",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StatsFetch,
			},
			{
				Name:  "export",
				Usage: "Write a listening report to disk (CSV, Markdown, text or JSON)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Report format (csv, markdown, text, json)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output base name (csv/text/json) or directory (markdown)",
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Item type (artists or tracks; empty exports both)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of items to include (1-50)",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "time-range",
						Usage: "Statistics window (short_term, medium_term, long_term)",
						Value: "medium_term",
					},
				},
				Action: r.StatsExport,
			},
		},
	}
}

// historyCommand handles recorded snapshots
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse recorded statistics snapshots",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Filter by item type (artists or tracks)",
					},
					&cli.StringFlag{
						Name:  "time-range",
						Usage: "Filter by statistics window",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Re-render one snapshot from its stored payload",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "clear",
				Usage: "Delete snapshots (all, or one with --id)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Delete a single snapshot by ID",
					},
				},
				Action: r.HistoryClear,
			},
		},
	}
}

// dashboardCommand returns the top-level TUI command for the interactive dashboard.
func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive terminal dashboard",
		Action:  r.Dashboard,
	}
}

// apiCommand handles direct (proxy) API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the statistics proxy",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET against the proxy, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "no-token",
						Usage: "Send the request without the stored token",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}
