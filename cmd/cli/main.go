package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/infrastructure/postgres"
)

type options struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "splitledger-cli",
		Short:         "SplitLedger CLI tool",
		Long:          `A command line interface for interacting with the SplitLedger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the SplitLedger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SPLITLEDGER_TOKEN"), "Bearer token (defaults to $SPLITLEDGER_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		signupCmd(opts),
		loginCmd(opts),
		balanceCmd(opts),
		expenseCmd(opts),
		settleCmd(opts),
		ledgerCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func signupCmd(opts *options) *cobra.Command {
	var req dto.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a user and print its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if _, err := opts.call(http.MethodPost, "/api/v1/users/signup", req, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.MobileNumber, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	var req dto.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.AuthResponse
			if _, err := opts.call(http.MethodPost, "/api/v1/users/login", req, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "Username")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func balanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show your net balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.BalanceResponse
			if _, err := opts.call(http.MethodGet, "/api/v1/user/balance", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", resp.Amount)
			return nil
		},
	}
}

func expenseCmd(opts *options) *cobra.Command {
	expense := &cobra.Command{
		Use:   "expense",
		Short: "Expense operations",
	}

	var req dto.CreateExpenseRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Record an expense you paid for",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ExpenseResponse
			if _, err := opts.call(http.MethodPost, "/api/v1/expenses/", req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	create.Flags().StringVar(&req.Amount, "amount", "", "Total amount, e.g. 100.00")
	create.Flags().StringVar(&req.Description, "description", "", "Description")
	create.Flags().StringVar(&req.Category, "category", "", "Category")
	create.Flags().StringVar(&req.SplitType, "split", "EQUAL", "Split type: EQUAL, EXACT or PERCENTAGE")
	create.Flags().StringSliceVar(&req.OwedBy, "owed-by", nil, "User ids who owe a share")
	create.Flags().StringSliceVar(&req.SplitValues, "values", nil, "Amounts or percentages, one per --owed-by user")
	_ = create.MarkFlagRequired("amount")
	_ = create.MarkFlagRequired("owed-by")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense you paid for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ExpenseResponse
			if _, err := opts.call(http.MethodDelete, "/api/v1/expenses/"+args[0], nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", resp.ID)
			return nil
		},
	}

	expense.AddCommand(create, del)

	return expense
}

func settleCmd(opts *options) *cobra.Command {
	var req dto.CreateSettlementRequest

	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Record a payment to another user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransactionResponse
			if _, err := opts.call(http.MethodPost, "/api/v1/transactions", req, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settled %s with %s (%s)\n", resp.Amount, resp.RecipientID, resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.RecipientID, "to", "", "Recipient user id")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount, e.g. 25.00")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check that all balances sum to zero",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			status, err := opts.call(http.MethodGet, "/api/v1/ledger/consistency", nil, &resp)
			if err != nil && status != http.StatusConflict {
				return err
			}

			out := cmd.OutOrStdout()
			if !resp.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED\nTotal: %s\n", resp.Total)
				return fmt.Errorf("ledger is inconsistent")
			}

			fmt.Fprintf(out, "Consistency check PASSED\nTotal: %s\n", resp.Total)
			return nil
		},
	}

	reconciliation := &cobra.Command{
		Use:   "reconciliation",
		Short: "Replay the transaction log against stored balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationResponse
			status, err := opts.call(http.MethodGet, "/api/v1/ledger/reconciliation", nil, &resp)
			if err != nil && status != http.StatusConflict {
				return err
			}

			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if len(resp.Discrepancies) > 0 || !resp.LedgerConsistent {
				return fmt.Errorf("%d users failed reconciliation", len(resp.Discrepancies))
			}
			return nil
		},
	}

	ledger.AddCommand(consistency, reconciliation)

	return ledger
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	migrate.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL (defaults to $DATABASE_URL)")
	migrate.PersistentFlags().StringVar(&migrationsPath, "migrations-path", "", "Migrations directory (defaults to the embedded set)")

	migrator := func(cmd *cobra.Command) *postgres.Migrator {
		l := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
		return postgres.NewMigrator(databaseURL, migrationsPath, l)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator(cmd).Up()
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator(cmd).Down()
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := migrator(cmd).Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", v, dirty)
			return nil
		},
	}

	migrate.AddCommand(up, down, version)

	return migrate
}

// call sends body as JSON and decodes the response into out. Non-2xx
// statuses return an error carrying the server's message; out is still
// decoded so callers can inspect structured failures.
func (o *options) call(method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, strings.TrimRight(o.baseURL, "/")+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.token != "" {
		req.Header.Set("Authorization", "Bearer "+o.token)
	}

	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode >= 300 {
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}

		var apiErr dto.ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return resp.StatusCode, fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return resp.StatusCode, fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
