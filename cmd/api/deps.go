package main

import (
	"log"

	"kasa/internal/domain/banksync"
	"kasa/internal/domain/reconciliation"
	"kasa/internal/infrastructure/bankapi"
	"kasa/internal/infrastructure/crypto"
	"kasa/internal/infrastructure/postgres"
	httphandlers "kasa/internal/interfaces/http"
	"kasa/internal/shared/auth"
	"kasa/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler           *httphandlers.AuthHandler
	EntryHandler          *httphandlers.EntryHandler
	BankTxHandler         *httphandlers.BankTransactionHandler
	ReportsHandler        *httphandlers.ReportsHandler
	ReconciliationHandler *httphandlers.ReconciliationHandler

	// Auth
	JWT *auth.JWT

	// Sync service (for scheduler)
	SyncService *banksync.SyncService

	// Repositories (for scheduler job provider)
	UserRepo *postgres.UserRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := postgres.RunMigrations(db); err != nil {
		return nil, err
	}

	// Initialize encryptor for provider keys at rest
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db, encryptor)
	entryRepo := postgres.NewEntryRepository(db)
	bankTxRepo := postgres.NewBankTransactionRepository(db)

	// Initialize bank aggregator client and sync services
	bankClient := bankapi.NewClient()
	syncService := banksync.NewSyncService(bankClient, userRepo, bankTxRepo, cfg.BankAPI.TransactionSyncStartDate)
	connectService := banksync.NewConnectService(bankClient, userRepo, entryRepo)
	triageService := banksync.NewTriageService(entryRepo, bankTxRepo)

	// Initialize reconciliation services
	matcher := reconciliation.NewMatcher(entryRepo, bankTxRepo)
	reviewService := reconciliation.NewReviewService(entryRepo, bankTxRepo)
	calculator := reconciliation.NewCalculator(entryRepo)

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	authHandler := httphandlers.NewAuthHandler(userRepo, jwt)
	entryHandler := httphandlers.NewEntryHandler(entryRepo)
	bankTxHandler := httphandlers.NewBankTransactionHandler(bankTxRepo, triageService, connectService, syncService)
	reportsHandler := httphandlers.NewReportsHandler(calculator)
	reconciliationHandler := httphandlers.NewReconciliationHandler(matcher, reviewService, cfg.Matching.MinScore, cfg.Matching.SuggestionLimit)

	return &Dependencies{
		DB:                    db,
		AuthHandler:           authHandler,
		EntryHandler:          entryHandler,
		BankTxHandler:         bankTxHandler,
		ReportsHandler:        reportsHandler,
		ReconciliationHandler: reconciliationHandler,
		JWT:                   jwt,
		SyncService:           syncService,
		UserRepo:              userRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
