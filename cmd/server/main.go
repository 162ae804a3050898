package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"whisp.dev/chat-widget/internal/api"
	"whisp.dev/chat-widget/internal/auth"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/core"
	"whisp.dev/chat-widget/internal/store"
	"whisp.dev/chat-widget/internal/utils"
)

func main() {
	// Command line flag for generating ADMIN_PASSWORD_HASH
	hashPassword := flag.String("hash-password", "", "Print the bcrypt hash of the given admin password and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			logrus.Fatalf("Failed to hash password: %v", err)
		}
		fmt.Println(hash)
		os.Exit(0)
	}

	// Load configuration
	config.LoadConfig()

	// Setup logging
	utils.SetupLogging(config.AppConfig.LogLevel, config.AppConfig.LogFormat)
	flushSentry := utils.InitSentry(config.AppConfig.SentryDSN, config.AppConfig.Environment)
	defer flushSentry()

	// Initialize database store
	dbStore, err := store.Open(config.AppConfig.DatabaseDriver, config.AppConfig.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize Lead service
	leadService := core.NewLeadService(dbStore, core.NewNotifier(config.AppConfig))

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(leadService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logrus.Infof("Starting server on %s (driver %s). Press Ctrl+C to quit.", serverAddr, config.AppConfig.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Could not listen on %s: %v", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exiting gracefully")
}
