package firebaseauth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Identity is the subset of a verified ID token the API relies on.
type Identity struct {
	UID   string
	Email string
	Role  string
}

type Verifier struct {
	client *auth.Client
}

func New(ctx context.Context, credentialsFile string) (*Verifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	return &Verifier{client: client}, nil
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	return identityFromClaims(tok.UID, tok.Claims), nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		id.Role = role
	}
	return id
}
