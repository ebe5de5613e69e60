package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trackd/internal/app"
	"trackd/internal/backup"
	"trackd/internal/config"
	"trackd/internal/model"
	"trackd/internal/store"
	"trackd/internal/tracker"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config from the default (or overridden) path.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a wired App. The caller must defer
// a.Close().
func newApp() (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

var rootCmd = &cobra.Command{
	Use:   "trackd",
	Short: "Issue tracking backend",
}

// serve command

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := a.Config()
		if err := a.CleanupSessions(cmd.Context()); err != nil {
			a.Logger().Warn("cleaning up sessions", "error", err)
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           a.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.Logger().Info("server listening", "addr", cfg.Server.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
		}
		return nil
	},
}

// migrate command

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer st.Close()

		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		fmt.Println("Database schema is up to date.")
		return nil
	},
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Listen Addr: %s\n", cfg.Server.Addr)
		fmt.Printf("Database:    %s\n", cfg.Database.Path)
		fmt.Printf("Vault:       %s\n", cfg.Backup.Vault.Type)
		return nil
	},
}

// backup command

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload an encrypted database snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		name, err := a.Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Snapshot uploaded: %s\n", name)
		return nil
	},
}

var backupSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate snapshot encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		enc, err := backup.NewEncryptorFromConfig(cfg.Backup.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		if enc.IsConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}

		passphrase, err := promptPassword("Passphrase for the private key: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// admin command

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations",
}

var adminUserAddCmd = &cobra.Command{
	Use:   "user-add NAME EMAIL",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		isAdmin, _ := cmd.Flags().GetBool("admin")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		role := model.UserRoleUser
		if isAdmin {
			role = model.UserRoleAdmin
		}

		u, err := a.Service().Register(cmd.Context(), tracker.RegisterInput{
			Name:     args[0],
			Email:    args[1],
			Password: password,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
		fmt.Printf("Created %s account %s (%s)\n", u.Role, u.Email, u.ID)
		return nil
	},
}

var adminPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove orphaned tickets, comments, activities and notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Service().PruneOrphans(cmd.Context())
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}
		fmt.Printf("Pruned %d ticket(s), %d comment(s), %d activity entry(ies), %d notification(s)\n",
			report.Tickets, report.Comments, report.Activities, report.Notifications)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	backupCmd.AddCommand(backupSetupCmd)

	adminCmd.AddCommand(adminUserAddCmd)
	adminUserAddCmd.Flags().Bool("admin", false, "Create an admin account")
	adminCmd.AddCommand(adminPruneCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(adminCmd)
}
