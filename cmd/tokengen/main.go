package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/playstudy/playstudy-api/internal/config"
	"github.com/playstudy/playstudy-api/internal/token"
)

// tokengen mints a token pair for a user id, for local development and
// manual API testing.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/tokengen/main.go <user-id> [ttl-minutes]")
		fmt.Println("Mints an access + refresh token pair signed with the configured secret")
		os.Exit(1)
	}

	_ = godotenv.Load()

	configPath := os.Getenv("PLAYSTUDY_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	accessTTL := cfg.Auth.AccessTokenTTL()
	if len(os.Args) >= 3 {
		var mins int
		if _, err := fmt.Sscanf(os.Args[2], "%d", &mins); err != nil {
			fmt.Fprintf(os.Stderr, "invalid ttl-minutes %q\n", os.Args[2])
			os.Exit(1)
		}
		accessTTL = time.Duration(mins) * time.Minute
	}

	codec := token.NewCodec(cfg.Auth.SecretKey, accessTTL, cfg.Auth.RefreshTokenTTL())

	access, err := codec.SignAccess(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign access token: %v\n", err)
		os.Exit(1)
	}
	refresh, err := codec.SignRefresh(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign refresh token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User ID: %s\n", os.Args[1])
	fmt.Printf("Access Token (%s):\n  %s\n", accessTTL, access)
	fmt.Printf("Refresh Token (%s):\n  %s\n", cfg.Auth.RefreshTokenTTL(), refresh)
	fmt.Println("\nUse with:")
	fmt.Printf("  curl -H \"Authorization: Bearer %s\" http://localhost:%d/api/v1/users/me\n", access, cfg.Server.Port)
}
