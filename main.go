// main.go
package main

import (
	"log"

	"go.uber.org/zap"

	"socialgram/cmd"
	"socialgram/internal/data/repository"
	"socialgram/internal/wire"
	"socialgram/pkg/database"
	"socialgram/pkg/notifier"
	"socialgram/pkg/token"
	"socialgram/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Apply schema migrations
	if err := database.RunMigrations(config.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to Redis (refresh token store)
	rdb, err := database.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	logger.Info("Redis connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Token issuer backed by Redis
	issuer := token.NewIssuer(config.JWT, rdb, logger)

	// Verification code delivery; channels without credentials degrade to
	// log-only
	var email, sms notifier.Notifier
	if config.Email.Host != "" {
		email = notifier.NewEmailNotifier(config.Email)
	}
	if config.SMS.BaseURL != "" {
		sms = notifier.NewSMSNotifier(config.SMS)
	}
	dispatcher := notifier.NewDispatcher(email, sms, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, issuer, dispatcher, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
