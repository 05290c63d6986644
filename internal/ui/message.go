package ui

import (
	"github.com/desertthunder/tempo/internal/tasks"
)

// dashboardLoadedMsg carries the finished dashboard load, or its failure.
type dashboardLoadedMsg struct {
	data *tasks.DashboardData
	err  error
}

// progressUpdateMsg carries one engine progress event.
type progressUpdateMsg tasks.ProgressUpdate

// loginOpenedMsg reports the outcome of launching the browser.
type loginOpenedMsg struct {
	err error
}
