package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"elevare.io/sitegen/internal/api"
	"elevare.io/sitegen/internal/auth"
	"elevare.io/sitegen/internal/config"
	"elevare.io/sitegen/internal/core"
	"elevare.io/sitegen/internal/logger"
	"elevare.io/sitegen/internal/metrics"
	"elevare.io/sitegen/internal/session"
	"elevare.io/sitegen/internal/store"
	"elevare.io/sitegen/internal/upstream"
)

func main() {
	config.LoadConfig()

	log := logger.NewStructured(config.AppConfig.LogLevel, config.AppConfig.LogFormat)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// Either talk to the real business platform or run the in-process
	// implementation against SQLite and Gemini.
	var collaborator api.Collaborator
	if config.AppConfig.UpstreamURL != "" {
		log.Info("using remote collaborator", map[string]interface{}{
			"url": config.AppConfig.UpstreamURL,
		})
		collaborator = upstream.NewClient(
			config.AppConfig.UpstreamURL,
			auth.StaticToken(config.AppConfig.UpstreamToken),
			log,
		)
	} else {
		dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Error("failed to initialize database", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		defer dbStore.Close()

		llmService, err := core.NewLLMService(context.Background(), config.AppConfig.GeminiAPIKey, log)
		if err != nil {
			log.Error("failed to initialize LLM service", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		defer llmService.Close()

		log.Info("using in-process collaborator", map[string]interface{}{
			"database": config.AppConfig.DatabaseURL,
		})
		collaborator = core.NewCollaborator(
			dbStore,
			core.NewCustomizationService(dbStore, llmService, log, config.AppConfig.CustomizeMessageLimit),
			core.NewGenerationService(dbStore, llmService, log, config.AppConfig.WebsiteGenerationLimit),
		)
	}

	sessions := session.NewManager(collaborator,
		time.Duration(config.AppConfig.RevealCharDelayMS)*time.Millisecond, log)
	defer sessions.CloseAll()

	apiHandler := api.NewAPIHandler(collaborator, sessions, m, log)
	router := api.NewRouter(apiHandler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", map[string]interface{}{"addr": serverAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server exited", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log.Info("server exiting gracefully", nil)
}
