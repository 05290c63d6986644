package session

import "sync"

// Controller is the stateful session façade used by the rest of the application.
//
// Until [Controller.Resolve] has run, Token reports no token and
// IsCheckingToken reports true; consumers must treat that window as "unknown"
// rather than "logged out" and must not prompt for login during it.
type Controller struct {
	mu       sync.Mutex
	once     sync.Once
	store    *Store
	resolver *Resolver
	loginURL string
	token    string
	resolved bool
}

// NewController creates a Controller over the given store and redirect address.
//
// loginURL is the environment-derived target for initiating a login.
func NewController(store *Store, addr Address, loginURL string) *Controller {
	return &Controller{
		store:    store,
		resolver: NewResolver(store, addr),
		loginURL: loginURL,
	}
}

// Resolve runs the session resolver exactly once and publishes the result.
//
// Subsequent calls are no-ops; the resolving state transitions to false once
// and never reverts.
func (c *Controller) Resolve() {
	c.once.Do(func() {
		cred := c.resolver.Resolve()

		c.mu.Lock()
		defer c.mu.Unlock()
		if cred != nil {
			c.token = cred.Token
		}
		c.resolved = true
	})
}

// Token returns the current token and whether one is present.
func (c *Controller) Token() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.token != ""
}

// IsCheckingToken reports whether session resolution is still pending.
func (c *Controller) IsCheckingToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.resolved
}

// LoginURL returns the login-initiation target.
func (c *Controller) LoginURL() string {
	return c.loginURL
}

// LogOut clears the persisted credential and drops the in-memory token.
//
// The token is gone by the time this returns; navigation (or re-prompting) is
// the caller's responsibility. The only external state touched is the
// credential slot.
func (c *Controller) LogOut() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	_ = c.store.Clear()
}
