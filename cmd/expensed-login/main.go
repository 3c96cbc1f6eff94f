// Command expensed-login obtains an access token for token-mode deployments.
// It runs the GitHub device flow to establish who the user is, then mints the
// signed token the server expects in the Bearer Authorization header.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"expensed/internal/identity"
)

func main() {
	_ = godotenv.Load()

	clientID := os.Getenv("GITHUB_CLIENT_ID")
	if clientID == "" {
		log.Fatalf("set GITHUB_CLIENT_ID to the OAuth app client id")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatalf("set JWT_SECRET to the server's signing secret")
	}

	cfg := &oauth2.Config{
		ClientID: clientID,
		Endpoint: endpoints.GitHub,
		Scopes:   []string{"read:user"},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		log.Fatalf("device authorization: %v", err)
	}
	fmt.Printf("Open %s and enter the code: %s\n", resp.VerificationURI, resp.UserCode)

	tok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		log.Fatalf("waiting for authorization: %v", err)
	}

	login, err := githubLogin(ctx, cfg, tok)
	if err != nil {
		log.Fatalf("fetch GitHub user: %v", err)
	}

	expiresIn := 24 * time.Hour
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("parse JWT_EXPIRES_IN: %v", err)
		}
		expiresIn = d
	}

	token, err := identity.NewTokenService(secret, expiresIn).Issue(login)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Printf("Logged in as %s. Use this token as a Bearer Authorization header:\n%s\n", login, token)
}

// githubLogin resolves the authenticated user's login name.
func githubLogin(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("empty login in user response")
	}
	return user.Login, nil
}
