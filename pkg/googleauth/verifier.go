// Package googleauth verifies Google ID tokens obtained by the frontend's
// sign-in flow and extracts the identity claims the API needs.
package googleauth

import (
	"fmt"

	verifier "github.com/futurenda/google-auth-id-token-verifier"
)

// Claims are the identity fields extracted from a verified Google ID token.
type Claims struct {
	Subject     string
	Email       string
	DisplayName string
}

// Verifier validates ID tokens against a Google OAuth client ID.
type Verifier struct {
	clientID string
}

// New returns a verifier bound to the given OAuth client ID.
func New(clientID string) (*Verifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google client id must not be empty")
	}

	return &Verifier{clientID: clientID}, nil
}

// Verify checks the token signature and audience, then decodes its claims.
func (v *Verifier) Verify(idToken string) (Claims, error) {
	g := verifier.Verifier{}
	if err := g.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return Claims{}, fmt.Errorf("id token verification failed: %w", err)
	}

	claimSet, err := verifier.Decode(idToken)
	if err != nil {
		return Claims{}, fmt.Errorf("failed to decode id token: %w", err)
	}

	return Claims{
		Subject:     claimSet.Sub,
		Email:       claimSet.Email,
		DisplayName: claimSet.Name,
	}, nil
}
