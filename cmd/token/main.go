// Command token mints an access token for a user id with the configured
// secret, for local use against the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/config"
)

func main() {
	user := flag.String("user", "", "user id to sign in as")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: token -user <id> [-name <display name>]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to set up tokens", "error", err)
		os.Exit(1)
	}

	token, err := tokens.Issue(*user, *name)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
