package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("token in the query completes the login", func(t *testing.T) {
		handler := NewCallbackHandler("")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_abc", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Sign-in Successful") {
			t.Error("expected the confirmation page")
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Errorf("unexpected error: %v", result.Error())
			}
			if result.Token != "tok_abc" {
				t.Errorf("unexpected token %q", result.Token)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a result")
		}
	})

	t.Run("missing token serves the fragment forwarder", func(t *testing.T) {
		handler := NewCallbackHandler("")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "window.location.hash") {
			t.Error("expected the fragment forwarding script")
		}

		select {
		case <-handler.Result():
			t.Error("forwarder page must not settle the result")
		default:
		}
	})

	t.Run("error parameter fails the login", func(t *testing.T) {
		handler := NewCallbackHandler("")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?error=access_denied", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("state mismatch is rejected", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_abc&state=wrong", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected an error result")
		}
	})

	t.Run("matching state is accepted", func(t *testing.T) {
		handler := NewCallbackHandler("expected_state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_abc&state=expected_state", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Token != "tok_abc" {
			t.Errorf("unexpected token %q", result.Token)
		}
	})

	t.Run("only the first token is consumed", func(t *testing.T) {
		handler := NewCallbackHandler("")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_first", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_second", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for the replay, got %d", second.Code)
		}

		result := <-handler.Result()
		if result.Token != "tok_first" {
			t.Errorf("expected the first token, got %q", result.Token)
		}

		// The channel closes after the single result.
		if _, open := <-handler.Result(); open {
			t.Error("expected the result channel to be closed")
		}
	})

	t.Run("serves the root and callback routes", func(t *testing.T) {
		routes := NewCallbackHandler("").Routes()
		if len(routes) != 2 || routes[0] != "/" || routes[1] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("routes a registered handler", func(t *testing.T) {
		router := NewBasicRouter()
		handler := NewCallbackHandler("")
		router.Handler(handler)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?access_token=tok_abc", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("rejects other methods on method routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router.Use(tag("outer"), tag("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("unexpected call order %v", order)
		}
	})
}
