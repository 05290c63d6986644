package server

import (
	"fmt"
	"net/http"
	"sync"
)

// CallbackResult contains the outcome of a login redirect.
type CallbackResult struct {
	Token string
	err   error
}

func (r *CallbackResult) Error() error {
	return r.err
}

// CallbackHandler receives the login redirect carrying the access token.
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a new callback handler. When state is non-empty
// the redirect must echo it back (CSRF protection for the direct grant).
func NewCallbackHandler(state string) *CallbackHandler {
	return &CallbackHandler{
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
//
// The proxy redirects to the application root; the direct grant lands on /callback.
func (h *CallbackHandler) Routes() []string {
	return []string{"/", "/callback"}
}

// ServeHTTP handles the redirect request.
//
// The implicit grant delivers the token in the URL fragment, which never
// reaches the server, so a request without an access_token parameter gets a
// small page that re-submits the fragment as a query string. A request with
// the parameter is consumed once and answered with a confirmation page.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.Send(CallbackResult{err: fmt.Errorf("authorization failed: %s", errParam)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token := query.Get("access_token")
	if token == "" {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, fragmentForwardPage)
		return
	}

	if h.state != "" && query.Get("state") != h.state {
		h.Send(CallbackResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	h.Send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const fragmentForwardPage = `
<!DOCTYPE html>
<html>
<head><title>Signing in...</title></head>
<body>
    <p>Completing sign-in...</p>
    <script>
        var hash = window.location.hash.replace(/^#/, "");
        if (hash) {
            window.location.replace("/callback?" + hash);
        }
    </script>
</body>
</html>
`

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Sign-in Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>&#10003; Sign-in Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
