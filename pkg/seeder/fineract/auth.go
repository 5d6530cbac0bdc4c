package fineract

import (
	"encoding/base64"
	"net/http"
)

// AuthProvider decorates outgoing requests with an Authorization header.
// Providers are expected to hand out credentials that are valid at call
// time; refreshing them is the provider's business, not the client's.
type AuthProvider interface {
	Apply(req *http.Request)
	Authenticated() bool
}

// BasicAuth adds a Basic Authorization header built once from the
// configured username and password.
type BasicAuth struct {
	header   string
	complete bool
}

// NewBasicAuth builds a Basic auth provider.
func NewBasicAuth(username, password string) *BasicAuth {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &BasicAuth{
		header:   "Basic " + credentials,
		complete: username != "" && password != "",
	}
}

func (a *BasicAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", a.header)
}

func (a *BasicAuth) Authenticated() bool { return a.complete }

// TokenAuth adds a Bearer Authorization header with a pre-acquired token.
// Token acquisition and refresh live outside the import engine.
type TokenAuth struct {
	token string
}

// NewTokenAuth builds a bearer-token provider.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

func (a *TokenAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.token)
}

func (a *TokenAuth) Authenticated() bool { return a.token != "" }
