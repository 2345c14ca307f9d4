// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/carterperez-dev/freelancehub/internal/auth"
	"github.com/carterperez-dev/freelancehub/internal/config"
	"github.com/carterperez-dev/freelancehub/internal/core"
	"github.com/carterperez-dev/freelancehub/internal/database"
)

var (
	configPath  string
	databaseURL string
	showStatus  bool

	privateKeyPath string
	publicKeyPath  string
	forceKeygen    bool
)

var rootCmd = &cobra.Command{
	Use:           "gigctl",
	Short:         "Operator tooling for the FreelanceHub API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbCfg, err := resolveDatabase()
		if err != nil {
			return err
		}

		db, err := core.NewDatabase(cmd.Context(), dbCfg)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck // process exits right after

		m := database.NewMigrator(db.DB, slog.Default())

		if showStatus {
			return printStatus(cmd, m)
		}

		applied, err := m.Up(cmd.Context())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			cmd.Println("database is up to date")
			return nil
		}
		for _, name := range applied {
			cmd.Println("applied", name)
		}
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the ES256 key pair used to sign access tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !forceKeygen {
			for _, p := range []string{privateKeyPath, publicKeyPath} {
				if _, err := os.Stat(p); err == nil {
					return fmt.Errorf("%s already exists, pass --force to replace it", p)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", p, err)
				}
			}
		}

		for _, p := range []string{privateKeyPath, publicKeyPath} {
			if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
				return fmt.Errorf("create key directory: %w", err)
			}
		}

		if err := auth.GenerateKeyPair(privateKeyPath, publicKeyPath); err != nil {
			return err
		}

		cmd.Println("wrote", privateKeyPath)
		cmd.Println("wrote", publicKeyPath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	migrateCmd.Flags().StringVar(&databaseURL, "database-url", "",
		"postgres url (defaults to DATABASE_URL, then the config file)")
	migrateCmd.Flags().BoolVar(&showStatus, "status", false, "list migrations without applying")

	keygenCmd.Flags().StringVar(&privateKeyPath, "private", "keys/private.pem", "private key output path")
	keygenCmd.Flags().StringVar(&publicKeyPath, "public", "keys/public.pem", "public key output path")
	keygenCmd.Flags().BoolVar(&forceKeygen, "force", false, "overwrite existing keys")

	rootCmd.AddCommand(migrateCmd, keygenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("gigctl failed", "error", err)
		os.Exit(1)
	}
}

// resolveDatabase avoids loading the full API config when a url is given
// directly, so migrations can run before redis or keys exist.
func resolveDatabase() (config.DatabaseConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.DatabaseConfig{}, fmt.Errorf("load .env: %w", err)
	}

	url := databaseURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url != "" {
		return config.DatabaseConfig{
			URL:             url,
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
		}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

func printStatus(cmd *cobra.Command, m *database.Migrator) error {
	names, err := database.Migrations()
	if err != nil {
		return err
	}

	applied, err := m.Applied(cmd.Context())
	if err != nil {
		return err
	}

	for _, name := range names {
		state := "pending"
		if applied[name] {
			state = "applied"
		}
		cmd.Printf("%-8s %s\n", state, name)
	}
	return nil
}
