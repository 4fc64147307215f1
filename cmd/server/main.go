package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eco_missions/internal/api"
	"eco_missions/internal/app/service"
	"eco_missions/internal/app/worker"
	"eco_missions/internal/common/security"
	"eco_missions/internal/domain/repository"
	"eco_missions/internal/domain/verify"
	"eco_missions/internal/platform/config"
	"eco_missions/internal/platform/database"
	"eco_missions/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	eventRepo := repository.NewPgEventRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	ledgerRepo := repository.NewPgLedgerRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	eventService := service.NewEventService(eventRepo, userRepo)
	submissionService := service.NewSubmissionService(submissionRepo, eventRepo, queue.RDB)
	ledgerService := service.NewLedgerService(ledgerRepo)
	leaderboardService := service.NewLeaderboardService(eventRepo)

	// 7. Initialize Verification Worker (as a goroutine)
	verificationWorker := worker.NewVerificationWorker(
		queue.RDB, submissionRepo, eventRepo, ledgerService, verify.StubVerifier{}, worker.ConfigFromApp(),
	)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go verificationWorker.Start(workerCtx)
	fmt.Println("Verification worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, eventService, submissionService, leaderboardService, ledgerService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
