package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/portfolio-site/portfolio-backend/config"
)

// firebaseScopes covers Firestore and the Identity Toolkit admin calls.
var firebaseScopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/datastore",
	"https://www.googleapis.com/auth/identitytoolkit",
}

// InitializeFirebase initializes the Firebase Admin SDK. A credentials file
// wins; otherwise application default credentials are used.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	} else {
		creds, err := google.FindDefaultCredentials(ctx, firebaseScopes...)
		if err != nil {
			return nil, fmt.Errorf("no FIREBASE_CREDENTIALS_PATH and no default credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}
