package firebase

import (
	"context"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrMissingEmail is returned for ID tokens without an email claim.
var ErrMissingEmail = errors.New("firebase token has no email claim")

// Identity is what a verified Firebase ID token tells us about the caller.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// App holds the initialized Firebase app and auth client
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient}, nil
}

// VerifyIDToken checks an ID token and extracts the caller's identity.
func (a *App) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := a.AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(token.UID, token.Claims)
}

func identityFromClaims(uid string, claims map[string]interface{}) (*Identity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrMissingEmail
	}
	name, _ := claims["name"].(string)
	return &Identity{UID: uid, Email: email, Name: name}, nil
}
