// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing listening statistics:
//  1. [LoginView] : Prompt for authorization when no session exists
//  2. [LoadingView] : Monitor real-time progress while the dashboard loads
//  3. [DashboardView] : Genre tallies plus top artist/track lists
//  4. [DetailView] : Inspect a single artist or track
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the StatsEngine, providing non-blocking status reporting during loads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, 1/2/3, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
