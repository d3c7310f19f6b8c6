package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/api"
	"github.com/pharmaguard-server/internal/config"
	"github.com/pharmaguard-server/internal/database"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/feedback"
	"github.com/pharmaguard-server/internal/kb"
	"github.com/pharmaguard-server/internal/service"
	"github.com/pharmaguard-server/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	// Load the embedded knowledge base
	knowledgeBase, err := kb.Default()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load knowledge base")
	}
	logger.WithField("kb_version", knowledgeBase.Version()).Info("Knowledge base loaded")

	// Build the analysis pipeline
	resolver, err := service.NewDrugKeyResolver(logger, 256)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create drug key resolver")
	}
	parser := service.NewVCFParserService(logger)
	classifier := service.NewGenotypeClassifierService()
	engine := service.NewRiskEngine(logger, knowledgeBase, classifier, resolver)
	renderer := service.NewSchemaRendererService(logger, knowledgeBase, resolver)

	// Optional narrative-explanation collaborator
	explainer := buildExplainer(cfg, logger)

	// Clinician feedback store
	feedbackStore, err := buildFeedbackStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize feedback store")
	}
	defer feedbackStore.Close()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting PharmaGuard server")

	// Create server
	server := api.NewServer(configManager, logger, parser, engine, renderer,
		knowledgeBase, explainer, feedbackStore)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// buildExplainer wires the collaborator client, Redis cache, and circuit
// breaker. Returns nil when disabled; the API omits explanation blocks.
func buildExplainer(cfg *domain.Config, logger *logrus.Logger) domain.ExplanationService {
	if !cfg.Explainer.Enabled {
		logger.Info("Explanation collaborator disabled")
		return nil
	}

	client := external.NewHTTPExplainClient(cfg.Explainer)

	var cache external.ExplanationCache
	if cfg.Cache.Enabled {
		redisCache, err := external.NewCacheClient(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Explanation cache unavailable, continuing without it")
		} else {
			cache = redisCache
		}
	}

	return external.NewResilientExplainer(client, cache, logger)
}

func buildFeedbackStore(cfg *domain.Config, logger *logrus.Logger) (feedback.Store, error) {
	switch cfg.Feedback.Backend {
	case "postgres":
		if cfg.Feedback.RunMigrate {
			runner, err := database.NewMigrationRunner(cfg.Feedback.DatabaseURL, logger)
			if err != nil {
				return nil, err
			}
			defer runner.Close()
			if err := runner.Up(context.Background()); err != nil {
				return nil, err
			}
		}
		return feedback.NewPostgresStoreFromURL(cfg.Feedback.DatabaseURL)
	default:
		return feedback.NewSQLiteStore(cfg.Feedback.SQLitePath)
	}
}
