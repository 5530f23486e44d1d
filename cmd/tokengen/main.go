// Package main mints development bearer tokens and optionally seeds one into a
// browsing context so authenticated site routes can be exercised locally.
// Tokens are signed with a dev key; the backend will not accept them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"gfe/internal/session"
)

const (
	devSigningKey   = "gfe-dev-signing-key"
	defaultTokenTTL = time.Hour
	defaultCtxTTL   = 720 * time.Hour
)

type tokenOutput struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Subject   string `json:"subject"`
	Session   string `json:"session,omitempty"`
	Cookie    string `json:"cookie,omitempty"`
}

func main() {
	subject := flag.String("sub", "", "Token subject. Generated if empty.")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	redisURL := flag.String("redis", "", "Redis URL to seed the token into a browsing context")
	sessionID := flag.String("session", "", "Browsing context id to seed. Generated if empty.")
	cookieName := flag.String("cookie", "gfe_session", "Browsing context cookie name")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if *subject == "" {
		*subject = uuid.NewString()
	}
	expiresAt := time.Now().Add(*ttl)
	token, err := mint(*subject, expiresAt, []byte(devSigningKey))
	if err != nil {
		fail("mint token: %v", err)
	}

	out := tokenOutput{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Subject:   *subject,
	}

	if *redisURL != "" {
		id := *sessionID
		if id == "" {
			id = uuid.NewString()
		}
		if err := seed(context.Background(), *redisURL, id, token); err != nil {
			fail("seed session: %v", err)
		}
		out.Session = id
		out.Cookie = *cookieName + "=" + id
	}

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fail("encode: %v", err)
		}
		return
	}

	fmt.Printf("Subject:    %s\n", out.Subject)
	fmt.Printf("Expires At: %s\n", out.ExpiresAt)
	if out.Session != "" {
		fmt.Printf("Session:    %s\n", out.Session)
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Printf("  curl -b %q http://localhost:8080/api/quotes\n", out.Cookie)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(out.Token)
}

func mint(subject string, expiresAt time.Time, key []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func seed(ctx context.Context, url, sessionID, token string) error {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse redis URL: %w", err)
	}
	client := goredis.NewClient(opts)
	defer client.Close() //nolint:errcheck // short-lived CLI

	handle := session.NewHandle(session.NewRedis(client), sessionID, defaultCtxTTL)
	return handle.SetToken(ctx, token)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
