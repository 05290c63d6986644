package session

import "time"

// Address exposes the carrier of the incoming login redirect parameter.
//
// In the browser this would be the visible URL; here it is the redirect URL
// received by the callback server or pasted by the user. Injecting it keeps
// the resolver testable with an in-memory fake.
type Address interface {
	ReadParam(name string) string // ReadParam returns the parameter value, or "" when absent
	StripParam(name string)       // StripParam consumes the parameter so it is observed at most once
}

// ParamAddress is a map-backed [Address].
type ParamAddress struct {
	params map[string]string
}

// NewParamAddress creates a ParamAddress over the given parameters.
func NewParamAddress(params map[string]string) *ParamAddress {
	if params == nil {
		params = map[string]string{}
	}
	return &ParamAddress{params: params}
}

func (a *ParamAddress) ReadParam(name string) string {
	return a.params[name]
}

func (a *ParamAddress) StripParam(name string) {
	delete(a.params, name)
}

// Resolver reconciles the possible credential sources into one authoritative result.
type Resolver struct {
	store *Store
	addr  Address
	now   func() time.Time
}

// NewResolver creates a Resolver over the given store and address.
func NewResolver(store *Store, addr Address) *Resolver {
	return &Resolver{store: store, addr: addr, now: time.Now}
}

// Resolve runs the one-time reconciliation and returns the resolved credential, or nil.
//
// An incoming redirect parameter always wins over stored state: a fresh login
// supersedes any previous session, even a non-expired one. The parameter is
// consumed and the new credential persisted before it is adopted. With no
// redirect parameter, the stored slot decides (the store evicts expired
// records itself). Persistence failures are absorbed: an absent or
// memory-only session is always a valid outcome.
func (r *Resolver) Resolve() *Credential {
	if token := r.addr.ReadParam("access_token"); token != "" {
		cred := Credential{Token: token, AcquiredAt: r.now()}
		_ = r.store.Write(cred)
		r.addr.StripParam("access_token")
		return &cred
	}

	return r.store.Read()
}
