// Package server provides HTTP routing, middleware, and the login callback receiver.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] receives the login redirect from the statistics proxy (or
// from Spotify directly in the implicit-grant case) and delivers the access
// token through a channel.
//
// It consumes the token exactly once to prevent replay.
//
// # Current Usage
//
// When the user runs `tempo auth login`, a temporary HTTP server starts on the
// configured localhost port, handles the redirect, and shuts down after the
// token arrives.
package server
