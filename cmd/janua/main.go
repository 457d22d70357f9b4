// Command janua is a small CLI for the Janua identity platform, mostly
// useful for poking at an environment during development: sign in, inspect
// the current user, force a refresh, and compute TOTP codes.
//
// Configuration is read from ~/.janua/config.yaml and JANUA_* environment
// variables; tokens persist in a SQLite file under the same directory so a
// sign-in survives between invocations.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/madfam-org/janua-go/pkg/janua"
	"github.com/madfam-org/janua-go/pkg/slogx"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: janua <command>

commands:
  health             check the API is reachable
  login <email>      sign in (password read from stdin)
  whoami             show the authenticated user
  refresh            force a token refresh
  logout             sign out and clear stored tokens
  mfa-code <secret>  compute the current TOTP code for a secret`)
}

func run(command string, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := janua.New(cfg, janua.WithLogger(slogx.New(slogx.Config{
		Level:  viper.GetString("log_level"),
		Format: "text",
	})))
	if err != nil {
		return err
	}
	defer client.Dispose()

	ctx := context.Background()

	switch command {
	case "health":
		health, err := client.Health(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("status: %s  version: %s\n", health.Status, health.Version)
		return nil

	case "login":
		if len(args) != 1 {
			return errors.New("usage: janua login <email>")
		}
		return login(ctx, client, args[0])

	case "whoami":
		user, err := client.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>  roles: %s\n", user.Name, user.Email, strings.Join(user.Roles, ", "))
		return nil

	case "refresh":
		if err := client.RefreshSession(ctx); err != nil {
			return err
		}
		fmt.Println("session refreshed")
		return nil

	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "mfa-code":
		if len(args) != 1 {
			return errors.New("usage: janua mfa-code <secret>")
		}
		code, err := janua.CurrentTOTPCode(args[0])
		if err != nil {
			return err
		}
		fmt.Println(code)
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func login(ctx context.Context, client *janua.Client, email string) error {
	fmt.Fprint(os.Stderr, "password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password = strings.TrimRight(password, "\r\n")

	auth, err := client.Login(ctx, email, password)

	var mfaErr *janua.MFARequiredError
	if errors.As(err, &mfaErr) {
		fmt.Fprintf(os.Stderr, "mfa code (%s): ", strings.Join(mfaErr.Methods, "/"))
		code, readErr := reader.ReadString('\n')
		if readErr != nil {
			return readErr
		}
		auth, err = client.CompleteMFALogin(ctx, mfaErr.MFAToken, "totp", strings.TrimRight(code, "\r\n"))
	}
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s\n", auth.User.Email)
	return nil
}

// loadConfig merges ~/.janua/config.yaml with JANUA_* environment
// variables. Tokens are kept next to the config file unless overridden.
func loadConfig() (janua.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return janua.Config{}, err
	}
	configDir := filepath.Join(home, ".janua")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix("janua")
	viper.AutomaticEnv()

	viper.SetDefault("base_url", "http://localhost:8000")
	viper.SetDefault("state_path", filepath.Join(configDir, "tokens.db"))
	viper.SetDefault("log_level", "info")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return janua.Config{}, err
		}
		// No config file is fine; env and defaults carry it.
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return janua.Config{}, err
	}

	return janua.Config{
		BaseURL:   viper.GetString("base_url"),
		APIKey:    viper.GetString("api_key"),
		StatePath: viper.GetString("state_path"),
		Debug:     viper.GetBool("debug"),
	}, nil
}
