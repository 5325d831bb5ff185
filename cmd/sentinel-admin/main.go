// Package main is the entry point for the Sentinel portal admin CLI.
// This tool provides administrative commands for managing portal accounts
// directly against the account store, without going through the HTTP
// boundary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/sentinel-portal/internal/config"
	"github.com/prn-tf/sentinel-portal/internal/repository"
	"github.com/prn-tf/sentinel-portal/internal/repository/postgres"
	"github.com/prn-tf/sentinel-portal/internal/repository/sqlite"
	"github.com/prn-tf/sentinel-portal/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Sentinel Portal Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create":
		if err := runCreate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "list":
		if err := runList(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "reset-password":
		if err := runResetPassword(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "username for the new account")
	password := fs.String("password", "", "initial password for the new account")
	isAdmin := fs.Bool("admin", false, "grant administrative privileges")
	requireChange := fs.Bool("require-change", true, "require a password change on first login")
	_ = fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("both -username and -password are required")
	}

	return withStore(*configPath, func(ctx context.Context, accounts *service.AccountService) error {
		account, err := accounts.Create(ctx, service.CreateAccountInput{
			Username:      *username,
			Password:      *password,
			IsAdmin:       *isAdmin,
			RequireChange: *requireChange,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created account %q (id %d)\n", account.Username, account.ID)
		return nil
	})
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	return withStore(*configPath, func(ctx context.Context, accounts *service.AccountService) error {
		summaries, err := accounts.List(ctx)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tADMIN\tCHANGE REQUIRED\tCREATED")
		for _, a := range summaries {
			fmt.Fprintf(tw, "%d\t%s\t%t\t%t\t%s\n",
				a.ID, a.Username, a.IsAdmin, a.PasswordChangeRequired,
				a.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	})
}

func runResetPassword(args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	id := fs.Int64("id", 0, "account id")
	password := fs.String("password", "", "new password")
	_ = fs.Parse(args)

	if *id == 0 || *password == "" {
		return fmt.Errorf("both -id and -password are required")
	}

	return withStore(*configPath, func(ctx context.Context, accounts *service.AccountService) error {
		if err := accounts.ChangePassword(ctx, *id, *password); err != nil {
			return err
		}
		fmt.Printf("Password reset for account id %d\n", *id)
		return nil
	})
}

// withStore opens the configured account store, ensures its schema exists,
// and runs fn against it.
func withStore(configPath string, fn func(ctx context.Context, accounts *service.AccountService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	ctx := context.Background()

	var repo repository.AccountRepository

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		repo = postgres.NewAccountRepository(db)
	default:
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		repo = sqlite.NewAccountRepository(db)
	}

	return fn(ctx, service.NewAccountService(repo, logger))
}

func printUsage() {
	fmt.Println(`Sentinel Portal Admin CLI

Usage:
  sentinel-admin <command> [arguments]

Commands:
  create          Create an account (-username, -password, -admin, -require-change)
  list            List all accounts
  reset-password  Reset an account's password (-id, -password)
  version         Print version information
  help            Show this help message

Examples:
  sentinel-admin create -username alice -password changeme -admin
  sentinel-admin list
  sentinel-admin reset-password -id 3 -password newpass

All commands accept -config pointing at the server's YAML config file.`)
}
