package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/tempo/internal/server"
	"github.com/desertthunder/tempo/internal/services"
	"github.com/desertthunder/tempo/internal/session"
	"github.com/desertthunder/tempo/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the login redirect flow through a temporary local server.
//
// Opens the browser at the proxy's /login endpoint (or, with --direct, at the
// Spotify authorization page) and waits for the redirect carrying the access
// token. The received credential is persisted to the session slot.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: session storage not initialized", shared.ErrServiceUnavailable)
	}

	direct := cmd.Bool("direct")
	timeout := time.Duration(cmd.Int("timeout")) * time.Second

	var state string
	var loginURL string

	if direct {
		clientID := r.config.Credentials.Spotify.ClientID
		redirectURI := r.config.Credentials.Spotify.RedirectURI
		if clientID == "" || redirectURI == "" {
			return fmt.Errorf("%w: --direct requires credentials.spotify.client_id and redirect_uri in config.toml", shared.ErrMissingConfig)
		}
		state = shared.GenerateID()
		loginURL = services.AuthorizeURL(clientID, redirectURI, state)
	} else {
		loginURL = r.controller.LoginURL()
	}

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("waiting for login redirect", "addr", addr)
	r.writePlain("Opening browser for authorization...\n")
	r.writePlain("If the browser does not open, visit:\n\n  %s\n\n", loginURL)

	if err := shared.OpenBrowser(loginURL); err != nil {
		r.logger.Warnf("failed to open browser: %v", err)
	}

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}

		cred := session.Credential{Token: result.Token, AcquiredAt: time.Now()}
		if err := r.store.Write(cred); err != nil {
			return fmt.Errorf("failed to persist credential: %w", err)
		}

		r.logger.Info("login successful")
		r.writePlain("✓ Login successful\n")
		r.writePlain("Session valid for %s\n", r.store.TTL())
		return nil

	case err := <-serverErr:
		return fmt.Errorf("callback server failed: %w", err)

	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for login redirect after %s", timeout)

	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthToken saves a token from a pasted redirect URL, or shows the current one.
//
// Useful when the redirect landed in a browser on another machine: paste the
// full redirect URL and the token is extracted and persisted.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: session storage not initialized", shared.ErrServiceUnavailable)
	}

	redirectURL := cmd.StringArg("url")
	if redirectURL == "" {
		cred := r.store.Read()
		if cred == nil {
			return fmt.Errorf("%w: no session; run 'tempo auth login'", shared.ErrNotAuthenticated)
		}
		r.writePlain("Token: %s\n", maskToken(cred.Token))
		r.writePlain("Acquired: %s\n", cred.AcquiredAt.Format(time.RFC3339))
		return nil
	}

	token, err := shared.ParseRedirectURL(redirectURL)
	if err != nil {
		return err
	}

	// The pasted URL is the redirect carrier: feed it through the resolver so
	// the incoming parameter supersedes any stored session and is consumed
	// exactly once.
	addr := session.NewParamAddress(map[string]string{shared.AccessTokenParam: token})
	cred := session.NewResolver(r.store, addr).Resolve()
	if cred == nil {
		return fmt.Errorf("%w: no credential in redirect URL", shared.ErrInvalidInput)
	}
	if r.store.Read() == nil {
		return fmt.Errorf("failed to persist credential")
	}

	r.logger.Info("token saved from redirect URL")
	return r.writePlain("✓ Token saved\n")
}

// AuthStatus reports the local session state, optionally verifying with the proxy.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	verify := cmd.Bool("verify")

	if r.store == nil {
		return fmt.Errorf("%w: session storage not initialized", shared.ErrServiceUnavailable)
	}

	cred := r.store.Read()
	if cred == nil {
		r.writePlain("✗ Not logged in\n")
		r.writePlain("Run 'tempo auth login' to authorize\n")
		return nil
	}

	age := time.Since(cred.AcquiredAt).Round(time.Second)
	remaining := (r.store.TTL() - age).Round(time.Second)

	r.writePlain("✓ Logged in\n")
	r.writePlain("Token: %s\n", maskToken(cred.Token))
	r.writePlain("Session age: %s (expires in %s)\n", age, remaining)

	if verify {
		if r.service == nil {
			return fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
		}

		r.logger.Info("verifying token with proxy")
		user, err := r.service.Me(ctx, cred.Token)
		if err != nil {
			return fmt.Errorf("token verification failed: %w", err)
		}
		r.writePlain("Verified as: %s (%s)\n", user.DisplayName, user.ID)
	}

	return nil
}

// AuthLogout discards the session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.controller == nil {
		return fmt.Errorf("%w: session storage not initialized", shared.ErrServiceUnavailable)
	}

	r.controller.Resolve()
	r.controller.LogOut()

	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}

// maskToken shortens a token for display.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
