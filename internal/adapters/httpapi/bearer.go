package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenReader yields the current session token. found=false means no session.
type TokenReader interface {
	Token(ctx context.Context) (token string, found bool, err error)
}

// bearerTransport attaches the session token, read per request, as a bearer credential.
// Requests made without a session are sent unchanged.
type bearerTransport struct {
	tokens TokenReader
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, found, err := t.tokens.Token(req.Context())
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	if !found || tok == "" {
		return t.base.RoundTrip(req)
	}
	rt := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return rt.RoundTrip(req)
}
