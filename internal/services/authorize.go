package services

import (
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// AuthorizeURL builds a direct Spotify implicit-grant authorization URL.
//
// The normal login path is the proxy's /login redirect; this bypasses it when
// a client ID is configured locally. The grant redirects back with the access
// token in the URL fragment, so no code exchange happens client-side.
func AuthorizeURL(clientID, redirectURI, state string) string {
	config := &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes: []string{
			"user-top-read",
			"user-read-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))
}
