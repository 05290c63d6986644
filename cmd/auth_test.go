package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/session"
	"github.com/desertthunder/tempo/internal/shared"
	tu "github.com/desertthunder/tempo/internal/testing"
	"github.com/urfave/cli/v3"
)

func runAuth(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	root := &cli.Command{Name: "tempo", Commands: []*cli.Command{authCommand(r)}}
	return root.Run(context.Background(), append([]string{"tempo", "auth"}, args...))
}

func TestAuthToken(t *testing.T) {
	t.Run("saves a pasted redirect URL", func(t *testing.T) {
		store := testStore(t)
		runner := NewRunner(RunnerOpts{
			Service:    &tu.MockStatsService{},
			Store:      store,
			Controller: session.NewController(store, session.NewParamAddress(nil), ""),
			Output:     &bytes.Buffer{},
		})

		if err := runAuth(t, runner, "token", "http://localhost:8888/?access_token=tok_pasted"); err != nil {
			t.Fatalf("auth token failed: %v", err)
		}

		cred := store.Read()
		if cred == nil || cred.Token != "tok_pasted" {
			t.Errorf("expected persisted credential, got %+v", cred)
		}
	})

	t.Run("fresh redirect supersedes the stored session", func(t *testing.T) {
		store := testStore(t)
		if err := store.Write(session.Credential{Token: "tok_old", AcquiredAt: time.Now()}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		runner := NewRunner(RunnerOpts{
			Service:    &tu.MockStatsService{},
			Store:      store,
			Controller: session.NewController(store, session.NewParamAddress(nil), ""),
			Output:     &bytes.Buffer{},
		})

		if err := runAuth(t, runner, "token", "http://localhost:8888/?access_token=tok_new"); err != nil {
			t.Fatalf("auth token failed: %v", err)
		}

		cred := store.Read()
		if cred == nil || cred.Token != "tok_new" {
			t.Errorf("expected the fresh token to win, got %+v", cred)
		}
	})

	t.Run("accepts a fragment-carried token", func(t *testing.T) {
		store := testStore(t)
		runner := NewRunner(RunnerOpts{
			Service:    &tu.MockStatsService{},
			Store:      store,
			Controller: session.NewController(store, session.NewParamAddress(nil), ""),
			Output:     &bytes.Buffer{},
		})

		if err := runAuth(t, runner, "token", "http://localhost:8888/callback#access_token=tok_frag&expires_in=3600"); err != nil {
			t.Fatalf("auth token failed: %v", err)
		}

		cred := store.Read()
		if cred == nil || cred.Token != "tok_frag" {
			t.Errorf("expected fragment token, got %+v", cred)
		}
	})

	t.Run("rejects a URL without a token", func(t *testing.T) {
		store := testStore(t)
		runner := NewRunner(RunnerOpts{
			Service:    &tu.MockStatsService{},
			Store:      store,
			Controller: session.NewController(store, session.NewParamAddress(nil), ""),
			Output:     &bytes.Buffer{},
		})

		err := runAuth(t, runner, "token", "http://localhost:8888/?state=xyz")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if store.Read() != nil {
			t.Error("expected no credential to be stored")
		}
	})

	t.Run("without an argument shows the masked token", func(t *testing.T) {
		store := testStore(t)
		if err := store.Write(session.Credential{Token: "BQDaLongSpotifyToken1234", AcquiredAt: time.Now()}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Service:    &tu.MockStatsService{},
			Store:      store,
			Controller: session.NewController(store, session.NewParamAddress(nil), ""),
			Output:     output,
		})

		if err := runAuth(t, runner, "token"); err != nil {
			t.Fatalf("auth token failed: %v", err)
		}

		if !strings.Contains(output.String(), "BQDa...1234") {
			t.Errorf("expected masked token, got %q", output.String())
		}
		if strings.Contains(output.String(), "BQDaLongSpotifyToken1234") {
			t.Error("full token must not be printed")
		}
	})
}
