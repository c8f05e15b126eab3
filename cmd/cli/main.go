package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	postgresrepo "github.com/moneyledger/moneyledger/internal/adapter/repository/postgres"
	"github.com/moneyledger/moneyledger/internal/infrastructure/config"
	"github.com/moneyledger/moneyledger/internal/infrastructure/postgres"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "moneyledger-cli",
		Short: "MoneyLedger admin CLI",
		Long:  `A command line interface for operating a MoneyLedger deployment.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the MoneyLedger API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MONEYLEDGER_TOKEN"), "Bearer token for authenticated commands")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Verify that ledger-wide debits equal credits",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})
	rootCmd.AddCommand(ledgerCmd)

	fundCmd := &cobra.Command{
		Use:   "fund <account-id> <amount>",
		Short: "Credit initial funds into an account (system role required)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			fundAccount(args[0], args[1])
		},
	}
	rootCmd.AddCommand(fundCmd)

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap <email> <password>",
		Short: "Provision the system user and its reserve account",
		Long: `Creates the system-role user and the reserve account that
initial-funds transactions debit. Safe to re-run: existing rows are
kept. Log in with the given credentials to obtain a system token.`,
		Args: cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			currency, _ := cmd.Flags().GetString("currency")
			bootstrapSystem(args[0], args[1], currency)
		},
	}
	bootstrapCmd.Flags().String("currency", "USD", "Currency of the system reserve account")
	rootCmd.AddCommand(bootstrapCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(false)
		},
	})
	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(true)
		},
	})
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func request(method, path string, body []byte) (*http.Response, []byte) {
	client := &http.Client{Timeout: timeout}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp, respBody
}

func checkConsistency() {
	resp, body := request(http.MethodGet, "/api/v1/ledger/consistency", nil)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		TotalDebits  string `json:"total_debits"`
		TotalCredits string `json:"total_credits"`
		Consistent   bool   `json:"consistent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Total debits:  %s\n", result.TotalDebits)
	fmt.Printf("Total credits: %s\n", result.TotalCredits)
	if result.Consistent {
		fmt.Println("Consistency check PASSED")
		return
	}

	fmt.Println("Consistency check FAILED: ledger is imbalanced")
	os.Exit(1)
}

func fundAccount(accountID, amount string) {
	payload, _ := json.Marshal(map[string]string{
		"to_account_id": accountID,
		"amount":        amount,
	})

	resp, body := request(http.MethodPost, "/api/v1/transactions/system/initial-funds", payload)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		fmt.Printf("Funding FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Printf("Funded %s with %s\nResponse: %s\n", accountID, amount, string(body))
}

func bootstrapSystem(email, password, currency string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: 2,
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	uc := usecase.NewBootstrapUseCase(
		postgresrepo.NewUserRepository(pool),
		postgresrepo.NewAccountRepository(pool),
		postgresrepo.NewULIDGenerator(),
	)

	result, err := uc.EnsureSystemIdentity(ctx, usecase.BootstrapInput{
		Email:    email,
		Password: password,
		Currency: currency,
	})
	if err != nil {
		fmt.Printf("Bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	if result.UserCreated {
		fmt.Printf("Created system user: %s\n", result.User.ID)
	} else {
		fmt.Printf("System user already exists: %s\n", result.User.ID)
	}
	if result.AccountCreated {
		fmt.Printf("Created system reserve account: %s\n", result.Account.ID)
	} else {
		fmt.Printf("System reserve account already exists: %s\n", result.Account.ID)
	}
}

func runMigrations(down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, "migrations")
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, "migrations")
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations done")
}
