package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tempo/internal/queries"
	"github.com/desertthunder/tempo/internal/session"
	"github.com/desertthunder/tempo/internal/shared"
	tu "github.com/desertthunder/tempo/internal/testing"
)

func testStore(t *testing.T) *session.Store {
	t.Helper()
	slot, err := session.NewFileSlot(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFileSlot failed: %v", err)
	}
	return session.NewStore(slot, time.Hour)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			service := &tu.MockStatsService{}
			store := testStore(t)
			controller := session.NewController(store, session.NewParamAddress(nil), "http://localhost:8000/login")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Service:    service,
				Store:      store,
				Controller: controller,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.service != service {
				t.Error("expected service to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
			if runner.controller != controller {
				t.Error("expected controller to be set")
			}
			if runner.cache == nil || runner.top == nil || runner.profile == nil {
				t.Error("expected query layer to be initialized")
			}
			if runner.engine == nil {
				t.Error("expected engine to be initialized")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("gate", func(t *testing.T) {
		t.Run("closed without a session", func(t *testing.T) {
			store := testStore(t)
			runner := NewRunner(RunnerOpts{
				Service:    &tu.MockStatsService{},
				Store:      store,
				Controller: session.NewController(store, session.NewParamAddress(nil), ""),
				Output:     &bytes.Buffer{},
			})

			gate := runner.gate()
			if gate.Open() {
				t.Error("expected closed gate without a session")
			}
			if gate.Resolving {
				t.Error("expected resolution to have completed")
			}
		})

		t.Run("open with a stored credential", func(t *testing.T) {
			store := testStore(t)
			if err := store.Write(session.Credential{Token: "tok_abc", AcquiredAt: time.Now()}); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Service:    &tu.MockStatsService{},
				Store:      store,
				Controller: session.NewController(store, session.NewParamAddress(nil), ""),
				Output:     &bytes.Buffer{},
			})

			gate := runner.gate()
			if !gate.Open() {
				t.Error("expected open gate with a stored credential")
			}
			if gate.Token != "tok_abc" {
				t.Errorf("expected token tok_abc, got %q", gate.Token)
			}
		})
	})

	t.Run("resolveResult", func(t *testing.T) {
		newRunnerWithToken := func(t *testing.T) *Runner {
			store := testStore(t)
			if err := store.Write(session.Credential{Token: "tok_abc", AcquiredAt: time.Now()}); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			return NewRunner(RunnerOpts{
				Service:    &tu.MockStatsService{},
				Store:      store,
				Controller: session.NewController(store, session.NewParamAddress(nil), ""),
				Output:     &bytes.Buffer{},
			})
		}

		t.Run("pending means not authenticated", func(t *testing.T) {
			runner := newRunnerWithToken(t)

			_, err := resolveResult(runner, queries.Result[string]{Status: queries.Pending})
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("token rejection logs out", func(t *testing.T) {
			runner := newRunnerWithToken(t)
			runner.controller.Resolve()
			if _, ok := runner.controller.Token(); !ok {
				t.Fatal("expected token before rejection")
			}

			_, err := resolveResult(runner, queries.Result[string]{
				Status: queries.Error,
				Err:    shared.ErrTokenRejected,
			})
			if !errors.Is(err, shared.ErrTokenRejected) {
				t.Errorf("expected ErrTokenRejected, got %v", err)
			}

			if _, ok := runner.controller.Token(); ok {
				t.Error("expected token to be discarded after rejection")
			}
			if cred := runner.store.Read(); cred != nil {
				t.Error("expected slot to be cleared after rejection")
			}
		})

		t.Run("other errors pass through", func(t *testing.T) {
			runner := newRunnerWithToken(t)

			boom := errors.New("boom")
			_, err := resolveResult(runner, queries.Result[string]{Status: queries.Error, Err: boom})
			if !errors.Is(err, boom) {
				t.Errorf("expected boom, got %v", err)
			}
		})

		t.Run("success returns data", func(t *testing.T) {
			runner := newRunnerWithToken(t)

			data, err := resolveResult(runner, queries.Result[string]{Status: queries.Success, Data: "hello"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data != "hello" {
				t.Errorf("expected hello, got %q", data)
			}
		})
	})
}

func TestWriteHelpers(t *testing.T) {
	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}

			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output: %q", got)
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}

			if !strings.Contains(output.String(), "  \"key\": \"value\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("found %d items\n", 3); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}

		if output.String() != "found 3 items\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("writePlainln failed: %v", err)
		}

		if output.String() != "\ndone\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Top Artists")

		if !strings.Contains(output.String(), "Top Artists") {
			t.Errorf("expected header title, got %q", output.String())
		}
	})
}

func TestMaskToken(t *testing.T) {
	t.Run("short tokens fully masked", func(t *testing.T) {
		if got := maskToken("abcd"); got != "********" {
			t.Errorf("expected full mask, got %q", got)
		}
	})

	t.Run("long tokens keep edges", func(t *testing.T) {
		if got := maskToken("BQDaLongSpotifyToken1234"); got != "BQDa...1234" {
			t.Errorf("unexpected mask: %q", got)
		}
	})
}
