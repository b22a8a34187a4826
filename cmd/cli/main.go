package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/godeposit/internal/infrastructure/config"
	"github.com/iho/godeposit/internal/infrastructure/logger"
	"github.com/iho/godeposit/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "godeposit-cli",
		Short: "Deposit accounts CLI tool",
		Long:  `A command line interface for operating the deposit accounts API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the deposit accounts API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd(), batchCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + args[0])
		},
	})

	preview := &cobra.Command{
		Use:   "preview-closure <id>",
		Short: "Compute the premature closure payout without closing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + args[0] + "/closure-preview"
			if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
				path += "?as_of=" + url.QueryEscape(asOf)
			}
			return getJSON(path)
		},
	}
	preview.Flags().String("as-of", "", "Business date (YYYY-MM-DD), defaults to today")
	cmd.AddCommand(preview)

	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Batch jobs over all active accounts",
	}

	jobs := []struct {
		use, short, path, dateFlag, dateParam string
	}{
		{"post-interest", "Post due interest for every active account", "/api/v1/batch/post-interest", "up-to", "up_to"},
		{"apply-charges", "Collect charges that have fallen due", "/api/v1/batch/apply-charges", "as-of", "as_of"},
		{"update-matured", "Refresh maturity state for term deposits", "/api/v1/batch/update-matured", "as-of", "as_of"},
	}

	for _, job := range jobs {
		sub := &cobra.Command{
			Use:   job.use,
			Short: job.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := job.path
				if date, _ := cmd.Flags().GetString(job.dateFlag); date != "" {
					path += "?" + job.dateParam + "=" + url.QueryEscape(date)
				}
				return postJSON(path)
			},
		}
		sub.Flags().String(job.dateFlag, "", "Business date (YYYY-MM-DD), defaults to today")
		cmd.AddCommand(sub)
	}

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	var migrationsPath string
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Path to migration files")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "godeposit-cli"})
			return postgres.RunMigrations(log, cfg.DatabaseURL, migrationsPath)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Service: "godeposit-cli"})
			return postgres.RunMigrationsDown(log, cfg.DatabaseURL, migrationsPath)
		},
	})

	return cmd
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return render(resp)
}

func postJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return render(resp)
}

func render(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, string(body))
	}
	printJSON(parsed)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
