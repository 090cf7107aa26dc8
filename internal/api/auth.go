package api

import (
	"golang.org/x/oauth2"
)

// TokenAuth reports the session as authenticated while its token source
// yields a valid token.
type TokenAuth struct {
	source oauth2.TokenSource
}

// NewTokenAuth wraps source; a nil source is never authenticated.
func NewTokenAuth(source oauth2.TokenSource) *TokenAuth {
	return &TokenAuth{source: source}
}

// StaticToken returns a token source for a fixed bearer token, or nil when token is empty.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func (a *TokenAuth) IsAuthenticated() bool {
	if a == nil || a.source == nil {
		return false
	}
	token, err := a.source.Token()
	return err == nil && token.Valid()
}
