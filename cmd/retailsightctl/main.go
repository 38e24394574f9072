// retailsightctl is a small operator CLI for the RetailSight API:
// health probes, one-shot questions, and store migrations.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/retailsight/retailsight/internal/migrations"
	duckdbstore "github.com/retailsight/retailsight/internal/store/duckdb"
	postgresstore "github.com/retailsight/retailsight/internal/store/postgres"
)

var (
	baseURL string
	timeout time.Duration

	storeDriver string
	storePath   string
	storeDSN    string
	steps       int
)

var rootCmd = &cobra.Command{
	Use:          "retailsightctl",
	Short:        "Operator CLI for the RetailSight analysis API",
	SilenceUsage: true,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the API health endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return getJSON(cmd.Context(), cmd.OutOrStdout(), "/api/health")
	},
}

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Check API readiness (probes the store)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return getJSON(cmd.Context(), cmd.OutOrStdout(), "/api/ready")
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <question>",
	Short: "Ask a business question and print the analysis",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		body, err := json.Marshal(map[string]string{"question": question})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost,
			strings.TrimRight(baseURL, "/")+"/api/analyze", strings.NewReader(string(body)))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		return doRequest(cmd.OutOrStdout(), req)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the store schema directly",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations (creates and seeds the retail schema)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStoreDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
			applied, err := migrations.NewRunner().Up(ctx, db, steps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration(s)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStoreDB(cmd.Context(), func(ctx context.Context, db *sql.DB) error {
			rolledBack, err := migrations.NewRunner().Down(ctx, db, steps)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", rolledBack)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:5000", "RetailSight API base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "HTTP timeout")

	migrateCmd.PersistentFlags().StringVar(&storeDriver, "driver", "duckdb", "store driver (duckdb or postgres)")
	migrateCmd.PersistentFlags().StringVar(&storePath, "path", "retailsight.db", "DuckDB store file (duckdb driver)")
	migrateCmd.PersistentFlags().StringVar(&storeDSN, "dsn", "", "store DSN (postgres driver)")
	migrateCmd.PersistentFlags().IntVar(&steps, "steps", 0, "limit the number of migrations (0 = default)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	rootCmd.AddCommand(healthCmd, readyCmd, analyzeCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getJSON(ctx context.Context, out io.Writer, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+path, nil)
	if err != nil {
		return err
	}
	return doRequest(out, req)
}

func doRequest(out io.Writer, req *http.Request) error {
	req.Header.Set("Accept", "application/json")
	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err == nil {
		formatted, err := json.MarshalIndent(pretty, "", "  ")
		if err == nil {
			fmt.Fprintln(out, string(formatted))
			return nil
		}
	}
	fmt.Fprintln(out, string(body))
	return nil
}

func withStoreDB(ctx context.Context, run func(context.Context, *sql.DB) error) error {
	switch storeDriver {
	case "postgres":
		st, err := postgresstore.Open(ctx, postgresstore.Config{DSN: storeDSN})
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		return run(ctx, st.DB())
	case "duckdb":
		st, err := duckdbstore.Open(ctx, storePath)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		return run(ctx, st.DB())
	default:
		return fmt.Errorf("unknown store driver %q", storeDriver)
	}
}
