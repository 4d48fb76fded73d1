package main

import (
	"log"

	api "autoreply-backend/cmd/api"
	authdomain "autoreply-backend/internal/auth/domain"
	authRepo "autoreply-backend/internal/auth/repository"
	authUsecase "autoreply-backend/internal/auth/usecase"
	autoreplyDelivery "autoreply-backend/internal/autoreply/delivery"
	autoreplydomain "autoreply-backend/internal/autoreply/domain"
	autoreplyRepo "autoreply-backend/internal/autoreply/repository"
	autoreplyUsecase "autoreply-backend/internal/autoreply/usecase"
	"autoreply-backend/internal/autoreply/scheduler"
	ruledomain "autoreply-backend/internal/rule/domain"
	ruleRepo "autoreply-backend/internal/rule/repository"
	ruleUsecase "autoreply-backend/internal/rule/usecase"
	"autoreply-backend/pkg/ai"
	"autoreply-backend/pkg/config"
	"autoreply-backend/pkg/database"
	"autoreply-backend/pkg/gmail"

	"golang.org/x/oauth2"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&ruledomain.Rule{},
		&autoreplydomain.ReplyLog{},
		&autoreplydomain.AnsweredMessage{},
		&autoreplydomain.JobLock{},
	); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	ruleRepository := ruleRepo.NewRuleRepository(db)
	logRepository := autoreplyRepo.NewLogRepository(db)
	answeredRepository := autoreplyRepo.NewAnsweredRepository(db)
	lockRepository := autoreplyRepo.NewJobLockRepository(db)

	// Gmail gateway; rotated access tokens are persisted back to the user
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret,
		func(userID string, token *oauth2.Token) error {
			return userRepository.UpdateGmailTokens(userID, token.AccessToken, token.RefreshToken)
		})

	// Initialize use cases
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	ruleUsecaseInstance := ruleUsecase.NewRuleUsecase(ruleRepository, userRepository, logRepository)
	runner := autoreplyUsecase.NewRunner(ruleRepository, logRepository, answeredRepository, lockRepository, gmailService, cfg)

	// Optional in-process scheduler; external cron is the default trigger
	jobScheduler := scheduler.NewScheduler(runner, cfg.AutoReplyInterval)
	jobScheduler.Start()
	defer jobScheduler.Stop()

	// Template generation collaborator
	generator := ai.NewReplyGenerator(cfg.GeminiApiKey)

	// Initialize HTTP handler
	cronHandler := autoreplyDelivery.NewCronHandler(runner, cfg)
	handler := api.NewHandler(authUsecaseInstance, ruleUsecaseInstance, cronHandler, generator, cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
