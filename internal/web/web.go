// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app replicates the four-view TUI workflow using server-side rendering
// with HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Login Prompt: Authorization link when no session exists
//  2. Dashboard: Genre tallies plus top artist/track tables
//  3. Detail Panel: HTMX partial swap showing one artist or track
//  4. Refresh Monitor: SSE (Server-Sent Events) streaming load progress
//
// Core Components
//
//   - HTTP Server: net/http server with html/template rendering
//   - Service Integration: Uses same services.StatsService and tasks.StatsEngine as TUI
//   - Session Management: Cookie-based sessions mirroring the session.Controller lifecycle
//   - SSE Handler: Streams real-time progress during full-listing fetches
//
// Routes
//
//	GET  /                      → Dashboard view (requires auth)
//	GET  /login                 → Authorization initiation
//	GET  /callback              → Authorization completion
//	GET  /items/{type}          → HTMX partial: top artists or tracks table
//	GET  /items/{type}/{id}     → HTMX partial: detail panel
//	POST /refresh               → Start full fetch, return SSE endpoint
//	GET  /refresh/{id}/stream   → SSE progress stream
//	GET  /history               → Snapshot listing from the repository
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - dashboard.html: Genre bars plus tables with hx-get on rows
//   - items.html: Partial template for a top-items table
//   - detail.html: Partial template for one artist or track
//   - progress.html: SSE consumer with progress bar
//
// # State Management
//
// Unlike the TUI's in-memory state, the web app persists state in:
//   - Session cookies: the credential token and its acquisition time
//   - Snapshot records: completed fetches, re-rendered without an API call
//   - In-memory channels: SSE connections for active refreshes
//
// # Progress Streaming
//
// Refresh progress uses Server-Sent Events:
//  1. POST /refresh starts a fetch, returns a refresh ID
//  2. Client opens SSE connection to /refresh/{id}/stream
//  3. Handler launches goroutine running StatsEngine.FetchAll
//  4. Progress channel updates stream as SSE events
//  5. On completion, send "done" event with redirect URL
//
// Authentication Flow
//
//  1. User visits /, redirected to /login if no valid session cookie
//  2. The proxy redirects back with the access token, stored in the session
//  3. Session middleware validates token age on protected routes
//  4. Expired or rejected tokens clear the session and re-prompt
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server and SSE
//   - gorilla/sessions or similar: Cookie management
//
// Implementation Tasks
//
//  1. HTTP server setup with route registration
//  2. Template structure with HTMX integration
//  3. Session middleware for auth state
//  4. Dashboard handler with engine integration
//  5. Top-items handler (HTMX partial)
//  6. Detail handler (HTMX partial)
//  7. SSE handler streaming progress updates
//  8. History handler over the snapshot repository
//  9. Login/callback handlers wrapping the existing authorization flow
//  10. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Mock services.StatsService for profile/top-items data
//   - Mock tasks.StatsEngine progress channels for refreshes
//   - Validate HTMX headers and response structure
//   - Test SSE stream formatting
package web
