// Utilities for parsing login redirect URLs.
package shared

import (
	"fmt"
	"net/url"
	"strings"
)

// AccessTokenParam is the query parameter carrying the token on the login redirect.
const AccessTokenParam = "access_token"

// ParseRedirectURL extracts the access token from a pasted login redirect URL.
//
// The proxy redirects to the application root with ?access_token=...; direct
// Spotify authorization uses the URL fragment instead, so both carriers are
// accepted.
func ParseRedirectURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty redirect URL", ErrInvalidInput)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if token := u.Query().Get(AccessTokenParam); token != "" {
		return token, nil
	}

	if u.Fragment != "" {
		if values, err := url.ParseQuery(u.Fragment); err == nil {
			if token := values.Get(AccessTokenParam); token != "" {
				return token, nil
			}
		}
	}

	return "", fmt.Errorf("%w: no %s parameter in redirect URL", ErrInvalidInput, AccessTokenParam)
}
