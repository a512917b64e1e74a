package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"kasa/internal/domain/banksync"
	"kasa/internal/domain/reconciliation"
	"kasa/internal/infrastructure/bankapi"
	"kasa/internal/infrastructure/crypto"
	"kasa/internal/infrastructure/postgres"
	"kasa/internal/shared/config"
)

const usage = `Kasa Admin CLI - Management commands for the Kasa API

Usage:
  admin <command> [options]

Commands:
  migrate        Apply pending database migrations
  sync           Run bank transaction sync for one or more users
  suggest        Print duplicate suggestions for a user's unreviewed entries

Examples:
  # Apply migrations
  admin migrate

  # Sync a specific user
  admin sync --user-id=1

  # Sync multiple users
  admin sync --user-id=1,2,3

  # Sync all users with a connected bank
  admin sync --all

  # Run with timeout
  admin sync --all --timeout=5m

  # Print duplicate suggestions for a user
  admin suggest --user-id=1 --min-score=0.7
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		runMigrate(os.Args[2:])
	case "sync":
		runSync(os.Args[2:])
	case "suggest":
		runSuggest(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	if err := postgres.RunMigrations(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}

func runSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID(s) to sync (comma-separated for multiple)")
	allUsers := fs.Bool("all", false, "Sync all users with a connected bank")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin sync [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin sync --user-id=1")
		fmt.Println("  admin sync --user-id=1,2,3")
		fmt.Println("  admin sync --all --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" && !*allUsers {
		fmt.Println("Error: must specify --user-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to create encryptor: %v", err)
	}
	userRepo := postgres.NewUserRepository(db, encryptor)
	bankTxRepo := postgres.NewBankTransactionRepository(db)

	syncService := banksync.NewSyncService(bankapi.NewClient(), userRepo, bankTxRepo, cfg.BankAPI.TransactionSyncStartDate)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startTime := time.Now()

	if *allUsers {
		results, err := syncService.SyncAllUsers(ctx)
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		for _, result := range results {
			printSyncResult(result)
		}
	} else {
		userIDs, err := parseUserIDs(*userIDStr)
		if err != nil {
			log.Fatalf("%v", err)
		}

		for _, uid := range userIDs {
			result, err := syncService.SyncUser(ctx, uid)
			if err != nil {
				log.Printf("Sync failed for user %d: %v", uid, err)
				continue
			}
			printSyncResult(result)
		}
	}

	elapsed := time.Since(startTime)
	log.Printf("Sync completed in %v", elapsed)
}

func printSyncResult(result *banksync.SyncResult) {
	fmt.Printf("\n=== User %d ===\n", result.UserID)
	fmt.Printf("  Transactions found:  %d\n", result.TransactionsFound)
	fmt.Printf("  Created:             %d\n", result.Created)
	fmt.Printf("  Updated:             %d\n", result.Updated)
	fmt.Printf("  Flagged duplicate:   %d\n", result.FlaggedDuplicate)
	fmt.Printf("  Skipped:             %d\n", result.Skipped)

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:              %d\n", len(result.Errors))
		for i, e := range result.Errors {
			if i >= 5 {
				fmt.Printf("    ... and %d more errors\n", len(result.Errors)-5)
				break
			}
			fmt.Printf("    - %s\n", e)
		}
	}
}

func runSuggest(args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)

	userIDStr := fs.String("user-id", "", "User ID to suggest duplicates for")
	minScore := fs.Float64("min-score", reconciliation.DefaultMinScore, "Minimum match score in (0, 1]")
	limit := fs.Int("limit", reconciliation.DefaultSuggestionLimit, "Maximum number of suggestions")
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation")

	fs.Usage = func() {
		fmt.Println("Usage: admin suggest [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin suggest --user-id=1")
		fmt.Println("  admin suggest --user-id=1 --min-score=0.6 --limit=20")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *userIDStr == "" {
		fmt.Println("Error: must specify --user-id")
		fs.Usage()
		os.Exit(1)
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(*userIDStr), 10, 64)
	if err != nil {
		log.Fatalf("Invalid user ID '%s': %v", *userIDStr, err)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	entryRepo := postgres.NewEntryRepository(db)
	bankTxRepo := postgres.NewBankTransactionRepository(db)
	matcher := reconciliation.NewMatcher(entryRepo, bankTxRepo)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	suggestions, err := matcher.SuggestDuplicates(ctx, userID, *limit, *minScore)
	if err != nil {
		log.Fatalf("Suggestion run failed: %v", err)
	}

	if len(suggestions) == 0 {
		fmt.Println("No duplicate candidates found")
		return
	}

	fmt.Printf("\n=== User %d: %d candidate(s) ===\n", userID, len(suggestions))
	for _, s := range suggestions {
		fmt.Printf("  entry %d (%s) ~ bank tx %s  score=%.2f  [%s]\n",
			s.EntryID, s.EntryKind, s.BankTransactionID, s.Score, strings.Join(s.Reasons, ", "))
	}
}

func parseUserIDs(s string) ([]int64, error) {
	var userIDs []int64
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID '%s': %w", p, err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, nil
}
