// Package googleauth verifies Google ID tokens for the OAuth login flow.
package googleauth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Profile is the account information extracted from a verified ID token.
type Profile struct {
	ID    string
	Email string
	Name  string
	Image string
}

// Verifier validates a Google ID token and returns the profile it asserts.
// The login handler depends on this interface so tests can substitute a fake.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Profile, error)
}

// IDTokenVerifier validates tokens against Google's public keys for a single
// OAuth client id.
type IDTokenVerifier struct {
	clientID string
}

var _ Verifier = (*IDTokenVerifier)(nil)

func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID}
}

func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google token verification failed: %w", err)
	}

	profile := &Profile{
		ID:    payload.Subject,
		Email: claimString(payload.Claims, "email"),
		Name:  claimString(payload.Claims, "name"),
		Image: claimString(payload.Claims, "picture"),
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("google token missing subject or email")
	}

	return profile, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
